package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newService(store storage.Store, client string, now *time.Time) Service {
	clock := func() time.Time { return *now }
	return Service{
		Scope:      storage.NewScope(store, client),
		Users:      NewUsers(store),
		Tokens:     Tokens{Secret: []byte("test-secret"), Clock: clock},
		AdminEmail: "admin@selambus.com",
		Cost:       bcrypt.MinCost,
		Clock:      clock,
	}
}

func validInput() RegisterInput {
	return RegisterInput{
		FirstName:       "Abebe",
		LastName:        "Kebede",
		Email:           "abebe@example.com",
		Phone:           "+251 911 234 567",
		Password:        "Secret#123",
		ConfirmPassword: "Secret#123",
		Terms:           true,
	}
}

func TestRegisterStoresHashedUser(t *testing.T) {
	now := fixedNow
	store := storage.NewMemoryStore()
	s := newService(store, "c1", &now)

	u, err := s.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Regexp(t, `^user_1741944600000_[0-9a-f]{8}$`, u.ID)
	assert.Equal(t, "en", u.Profile.Preferences.Language)
	assert.Equal(t, "ETB", u.Profile.Preferences.Currency)
	assert.Contains(t, u.Profile.Avatar, "ui-avatars.com")
	assert.Contains(t, u.Profile.Avatar, "name=Abebe+Kebede&")

	all, err := s.Users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotEqual(t, "Secret#123", all[0].PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(all[0].PasswordHash), []byte("Secret#123")))

	// registration does not log in
	_, err = s.CurrentUser(context.Background())
	assert.True(t, domain.IsUnauthorized(err))
}

func TestRegisterReportsAllFieldErrors(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)

	_, err := s.Register(context.Background(), RegisterInput{
		FirstName:       "A",
		LastName:        "",
		Email:           "bad",
		Phone:           "123",
		Password:        "short",
		ConfirmPassword: "other",
	})
	var errs domain.FieldErrors
	require.ErrorAs(t, err, &errs)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Msg
	}
	assert.Len(t, fields, 7)
	assert.Equal(t, "Password must be at least 8 characters", fields["password"])
	assert.Equal(t, "Passwords do not match", fields["confirmPassword"])
	assert.Equal(t, "You must agree to the terms and conditions", fields["terms"])

	in := validInput()
	in.Password, in.ConfirmPassword = "alllowercase1", "alllowercase1"
	_, err = s.Register(context.Background(), in)
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "Password must contain uppercase, lowercase, number, and special character", errs[0].Msg)
}

func TestRegisterDuplicates(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)
	ctx := context.Background()

	_, err := s.Register(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Email = "ABEBE@example.com"
	in.Phone = "0922000000"
	_, err = s.Register(ctx, in)
	require.True(t, domain.IsConflict(err))
	assert.Equal(t, "Email address is already registered", err.Error())

	in = validInput()
	in.Email = "other@example.com"
	in.Phone = "+251911234567"
	_, err = s.Register(ctx, in)
	require.True(t, domain.IsConflict(err))
	assert.Equal(t, "Phone number is already registered", err.Error())
}

func TestConcurrentRegistrationKeepsEveryUser(t *testing.T) {
	now := fixedNow
	store := storage.NewMemoryStore()
	s := newService(store, "c1", &now)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := validInput()
			in.Email = "user" + string(rune('a'+i)) + "@example.com"
			in.Phone = "09112345" + string(rune('0'+i)) + "0"
			_, err := s.Register(context.Background(), in)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := s.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestLoginAreasAndToken(t *testing.T) {
	now := fixedNow
	store := storage.NewMemoryStore()
	s := newService(store, "c1", &now)
	ctx := context.Background()

	_, err := s.Register(ctx, validInput())
	require.NoError(t, err)

	res, err := s.Login(ctx, LoginInput{Identifier: "0911234567", Password: "Secret#123"})
	require.NoError(t, err)
	assert.Equal(t, "abebe@example.com", res.User.Email)
	assert.False(t, res.Admin)
	assert.Equal(t, fixedNow.Add(TokenTTL), res.ExpiresAt)

	_, err = store.Get(ctx, storage.Key(storage.Session, "c1", storage.KeySession))
	assert.NoError(t, err)
	_, err = store.Get(ctx, storage.Key(storage.Local, "c1", storage.KeySession))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	claims, err := s.Tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	// remember me goes to the local area of another client
	other := newService(store, "c2", &now)
	_, err = other.Login(ctx, LoginInput{Identifier: "abebe@example.com", Password: "Secret#123", RememberMe: true})
	require.NoError(t, err)
	_, err = store.Get(ctx, storage.Key(storage.Local, "c2", storage.KeySession))
	assert.NoError(t, err)
}

func TestLoginRejections(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)
	ctx := context.Background()
	_, err := s.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = s.Login(ctx, LoginInput{Identifier: "nobody", Password: "Secret#123"})
	assert.True(t, domain.IsValidation(err))

	_, err = s.Login(ctx, LoginInput{Identifier: "abebe@example.com", Password: "12345"})
	assert.True(t, domain.IsValidation(err))

	_, err = s.Login(ctx, LoginInput{Identifier: "abebe@example.com", Password: "Wrong#123"})
	require.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, "Invalid email/phone or password", err.Error())
}

func TestCurrentUserExpiry(t *testing.T) {
	now := fixedNow
	store := storage.NewMemoryStore()
	s := newService(store, "c1", &now)
	ctx := context.Background()
	_, err := s.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = s.Login(ctx, LoginInput{Identifier: "abebe@example.com", Password: "Secret#123", RememberMe: true})
	require.NoError(t, err)

	now = fixedNow.Add(23 * time.Hour)
	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Abebe", u.FirstName)

	now = fixedNow.Add(24 * time.Hour)
	_, err = s.CurrentUser(ctx)
	assert.True(t, domain.IsUnauthorized(err))
	_, err = store.Get(ctx, storage.Key(storage.Local, "c1", storage.KeySession))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCurrentUserPrefersSessionArea(t *testing.T) {
	now := fixedNow
	store := storage.NewMemoryStore()
	s := newService(store, "c1", &now)
	ctx := context.Background()

	local := models.Session{User: models.PublicUser{ID: "local"}, Timestamp: fixedNow.Format(time.RFC3339)}
	tab := models.Session{User: models.PublicUser{ID: "tab"}, Timestamp: fixedNow.Format(time.RFC3339)}
	require.NoError(t, s.Scope.SetJSON(ctx, storage.Local, storage.KeySession, local, 0))
	require.NoError(t, s.Scope.SetJSON(ctx, storage.Session, storage.KeySession, tab, 0))

	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tab", u.ID)

	s.Logout(ctx)
	_, err = s.CurrentUser(ctx)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestCorruptSessionIsUnauthenticated(t *testing.T) {
	now := fixedNow
	store := storage.NewMemoryStore()
	s := newService(store, "c1", &now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.Key(storage.Session, "c1", storage.KeySession), []byte("{oops"), 0))
	_, err := s.CurrentUser(ctx)
	require.True(t, domain.IsUnauthorized(err))
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestResetPassword(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)
	ctx := context.Background()
	_, err := s.Register(ctx, validInput())
	require.NoError(t, err)

	assert.NoError(t, s.ResetPassword(ctx, "abebe@example.com"))

	err = s.ResetPassword(ctx, "ghost@example.com")
	require.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Email address not found", err.Error())

	assert.True(t, domain.IsValidation(s.ResetPassword(ctx, "not-an-email")))
}

func TestSocialLoginReusesAccount(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)
	ctx := context.Background()

	first, err := s.SocialLogin(ctx, "Google")
	require.NoError(t, err)
	assert.Equal(t, "user@google.com", first.User.Email)
	assert.Equal(t, "google", first.User.Provider)

	again, err := s.SocialLogin(ctx, "google")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	// social accounts have no password
	_, err = s.Login(ctx, LoginInput{Identifier: "user@google.com", Password: "whatever"})
	assert.True(t, domain.IsUnauthorized(err))

	_, err = s.SocialLogin(ctx, "myspace")
	assert.True(t, domain.IsValidation(err))
}

func TestAdminToken(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)
	ctx := context.Background()

	in := validInput()
	in.Email = "Admin@SelamBus.com"
	_, err := s.Register(ctx, in)
	require.NoError(t, err)

	res, err := s.Login(ctx, LoginInput{Identifier: "admin@selambus.com", Password: "Secret#123"})
	require.NoError(t, err)
	assert.True(t, res.Admin)

	claims, err := s.Tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestTokenParseRejects(t *testing.T) {
	now := fixedNow
	clock := func() time.Time { return now }
	tokens := Tokens{Secret: []byte("a"), Clock: clock}

	raw, _, err := tokens.Issue("u1", "a@b.co", false)
	require.NoError(t, err)

	_, err = Tokens{Secret: []byte("b"), Clock: clock}.Parse(raw)
	assert.Error(t, err)

	now = fixedNow.Add(TokenTTL + time.Second)
	_, err = tokens.Parse(raw)
	assert.Error(t, err)
}

func TestLoginHonoursContext(t *testing.T) {
	now := fixedNow
	s := newService(storage.NewMemoryStore(), "c1", &now)
	s.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Login(ctx, LoginInput{Identifier: "abebe@example.com", Password: "Secret#123"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPasswordStrength(t *testing.T) {
	cases := map[string]Strength{
		"abc":              StrengthWeak,
		"abcdefgh":         StrengthWeak,
		"Abcdefgh":         StrengthMedium,
		"Abcdefg1":         StrengthMedium,
		"Abcdefg1!":        StrengthStrong,
		"Abcdefghijk1!":    StrengthStrong,
		strings.Repeat("a", 12): StrengthMedium,
	}
	for pw, want := range cases {
		assert.Equal(t, want, PasswordStrength(pw), pw)
	}
}
