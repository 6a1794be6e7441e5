// Package auth implements the login, registration and password reset forms
// over the shared users table, plus the session record every authenticated
// page checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

const specialChars = `!@#$%^&*(),.?":{}|<>`

var (
	reUpper   = regexp.MustCompile(`[A-Z]`)
	reLower   = regexp.MustCompile(`[a-z]`)
	reDigit   = regexp.MustCompile(`\d`)
	reSpecial = regexp.MustCompile(`[` + regexp.QuoteMeta(specialChars) + `]`)
)

type RegisterInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Terms           bool   `json:"terms"`
}

type LoginInput struct {
	Identifier string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResult is the session written for the client plus an API token.
type LoginResult struct {
	User      models.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Admin     bool              `json:"isAdmin"`
}

type Service struct {
	Scope      storage.Scope
	Users      *Users
	Tokens     Tokens
	AdminEmail string
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost      int
	Delay     time.Duration
	Clock     utils.Clock
	RequestID string
}

// Register validates every field, rejects duplicate email or phone and
// appends the new user. It does not log the user in.
func (s Service) Register(ctx context.Context, in RegisterInput) (models.PublicUser, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if errs := validateRegister(in); len(errs) > 0 {
		return models.PublicUser{}, errs
	}
	if err := s.wait(ctx); err != nil {
		return models.PublicUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return models.PublicUser{}, domain.InternalError{Msg: "Registration failed. Please try again.", Err: err}
	}

	now := s.Clock.Now()
	user := models.User{
		ID:           NewUserID(now),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		CreatedAt:    now.UTC().Format(time.RFC3339),
		Profile:      defaultProfile(in.FirstName, in.LastName),
	}

	err = s.Users.Add(ctx, user, func(all []models.User) error {
		phone := utils.PhoneKey(in.Phone)
		for _, u := range all {
			if strings.EqualFold(u.Email, in.Email) {
				return domain.ConflictError{Msg: "Email address is already registered", Err: domain.ValidationError{Field: "email"}}
			}
			if utils.PhoneKey(u.Phone) == phone {
				return domain.ConflictError{Msg: "Phone number is already registered", Err: domain.ValidationError{Field: "phoneNumber"}}
			}
		}
		return nil
	})
	if err != nil {
		if domain.IsConflict(err) {
			return models.PublicUser{}, err
		}
		utils.LogEvent(s.RequestID, "auth", "register", "store error: "+err.Error())
		return models.PublicUser{}, domain.InternalError{Msg: "Registration failed. Please try again.", Err: err}
	}

	utils.LogEvent(s.RequestID, "auth", "register", "user="+user.ID)
	return user.ToPublic(), nil
}

func validateRegister(in RegisterInput) domain.FieldErrors {
	var errs domain.FieldErrors
	add := func(field, msg string) {
		errs = append(errs, domain.ValidationError{Field: field, Msg: msg})
	}

	if len([]rune(in.FirstName)) < 2 {
		add("firstName", "First name must be at least 2 characters")
	}
	if len([]rune(in.LastName)) < 2 {
		add("lastName", "Last name must be at least 2 characters")
	}
	if !utils.IsEmail(in.Email) {
		add("email", "Please enter a valid email address")
	}
	if !utils.IsEthiopianPhone(in.Phone) {
		add("phoneNumber", "Please enter a valid phone number")
	}
	switch {
	case len(in.Password) < 8:
		add("password", "Password must be at least 8 characters")
	case !complexEnough(in.Password):
		add("password", "Password must contain uppercase, lowercase, number, and special character")
	}
	if in.Password != in.ConfirmPassword {
		add("confirmPassword", "Passwords do not match")
	}
	if !in.Terms {
		add("terms", "You must agree to the terms and conditions")
	}
	return errs
}

func complexEnough(pw string) bool {
	return reUpper.MatchString(pw) && reLower.MatchString(pw) &&
		reDigit.MatchString(pw) && reSpecial.MatchString(pw)
}

// Login checks credentials and writes the session. rememberMe picks the
// local area over the session area.
func (s Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	ident := strings.TrimSpace(in.Identifier)
	if !utils.IsEmail(ident) && !utils.IsEthiopianPhone(ident) {
		return LoginResult{}, domain.ValidationError{Field: "email", Msg: "Please enter a valid email or phone number"}
	}
	if len(in.Password) < 6 {
		return LoginResult{}, domain.ValidationError{Field: "password", Msg: "Password must be at least 6 characters"}
	}
	if err := s.wait(ctx); err != nil {
		return LoginResult{}, err
	}

	all, err := s.Users.List(ctx)
	if err != nil {
		utils.LogEvent(s.RequestID, "auth", "login", "users read error: "+err.Error())
		return LoginResult{}, domain.InternalError{Msg: "Login failed. Please try again.", Err: err}
	}

	user, ok := FindByIdentifier(all, ident)
	if !ok || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		utils.LogEvent(s.RequestID, "auth", "login", "rejected")
		return LoginResult{}, domain.UnauthorizedError{Msg: "Invalid email/phone or password"}
	}

	return s.startSession(ctx, user.ToPublic(), in.RememberMe)
}

// SocialLogin signs in a placeholder account for google or facebook. The
// account is created on first use and never has a password.
func (s Service) SocialLogin(ctx context.Context, provider string) (LoginResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	var first string
	switch provider {
	case "google":
		first = "Google"
	case "facebook":
		first = "Facebook"
	default:
		return LoginResult{}, domain.ValidationError{Field: "provider", Msg: "unsupported provider"}
	}
	if err := s.wait(ctx); err != nil {
		return LoginResult{}, err
	}

	email := "user@" + provider + ".com"
	now := s.Clock.Now()
	user := models.User{
		ID:        NewUserID(now),
		FirstName: first,
		LastName:  "User",
		Email:     email,
		Phone:     "+251900000000",
		Provider:  provider,
		CreatedAt: now.UTC().Format(time.RFC3339),
		Profile:   defaultProfile("Social", "User"),
	}

	err := s.Users.Add(ctx, user, func(all []models.User) error {
		for _, u := range all {
			if strings.EqualFold(u.Email, email) {
				user = u
				return errExisting
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errExisting) {
		return LoginResult{}, domain.InternalError{Msg: "Social login failed. Please try again.", Err: err}
	}

	utils.LogEvent(s.RequestID, "auth", "social_login", "provider="+provider)
	return s.startSession(ctx, user.ToPublic(), false)
}

var errExisting = errors.New("auth: user exists")

func (s Service) startSession(ctx context.Context, user models.PublicUser, remember bool) (LoginResult, error) {
	now := s.Clock.Now()
	sess := models.Session{User: user, Timestamp: now.UTC().Format(time.RFC3339Nano)}

	area := storage.Session
	if remember {
		area = storage.Local
	}
	if err := s.Scope.SetJSON(ctx, area, storage.KeySession, sess, 0); err != nil {
		return LoginResult{}, domain.InternalError{Msg: "Login failed. Please try again.", Err: err}
	}

	admin := s.IsAdmin(user)
	token, exp, err := s.Tokens.Issue(user.ID, user.Email, admin)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "failed to generate token", Err: err}
	}

	utils.LogEventf(s.RequestID, "auth", "login", "user=%s area=%s", user.ID, area)
	return LoginResult{User: user, Token: token, ExpiresAt: exp, Admin: admin}, nil
}

// CurrentUser reads the session area first and then the local one. An
// expired session is removed from both.
func (s Service) CurrentUser(ctx context.Context) (models.PublicUser, error) {
	var sess models.Session
	err := s.Scope.GetJSON(ctx, storage.Session, storage.KeySession, &sess)
	if errors.Is(err, storage.ErrNotFound) {
		err = s.Scope.GetJSON(ctx, storage.Local, storage.KeySession, &sess)
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.PublicUser{}, domain.UnauthorizedError{}
	case err != nil:
		utils.LogEvent(s.RequestID, "auth", "session", "parse error: "+err.Error())
		return models.PublicUser{}, domain.UnauthorizedError{Err: err}
	}

	started, err := time.Parse(time.RFC3339Nano, sess.Timestamp)
	if err != nil {
		utils.LogEvent(s.RequestID, "auth", "session", "bad timestamp: "+sess.Timestamp)
		return models.PublicUser{}, domain.UnauthorizedError{Err: err}
	}
	if s.Clock.Now().Sub(started) >= SessionTTL {
		s.clearSession(ctx)
		utils.LogEvent(s.RequestID, "auth", "session", "expired user="+sess.User.ID)
		return models.PublicUser{}, domain.UnauthorizedError{Msg: "session expired"}
	}
	return sess.User, nil
}

// ResetPassword only checks that the email is registered.
func (s Service) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !utils.IsEmail(email) {
		return domain.ValidationError{Field: "email", Msg: "Please enter a valid email address"}
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	all, err := s.Users.List(ctx)
	if err != nil {
		return domain.InternalError{Msg: "Failed to send reset instructions. Please try again.", Err: err}
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, email) {
			utils.LogEvent(s.RequestID, "auth", "reset_password", "user="+u.ID)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "user", Msg: "Email address not found"}
}

func (s Service) Logout(ctx context.Context) {
	s.clearSession(ctx)
	utils.LogEvent(s.RequestID, "auth", "logout", "ok")
}

func (s Service) clearSession(ctx context.Context) {
	for _, area := range []storage.Area{storage.Session, storage.Local} {
		if err := s.Scope.Delete(ctx, area, storage.KeySession); err != nil && !errors.Is(err, storage.ErrNotFound) {
			utils.LogEvent(s.RequestID, "auth", "logout", "delete error: "+err.Error())
		}
	}
}

// IsAdmin compares the user's email with the configured admin address.
func (s Service) IsAdmin(u models.PublicUser) bool {
	return s.AdminEmail != "" && strings.EqualFold(strings.TrimSpace(u.Email), s.AdminEmail)
}

func (s Service) cost() int {
	if s.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return s.Cost
}

func (s Service) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewUserID renders user_<millis>_<8 random chars>.
func NewUserID(now time.Time) string {
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Avatar is the generated initials image for a name.
func Avatar(first, last string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(first+" "+last) + "&background=3b82f6&color=fff&size=128"
}

func defaultProfile(first, last string) models.UserProfile {
	return models.UserProfile{
		Avatar: Avatar(first, last),
		Preferences: models.Preferences{
			Language:      "en",
			Currency:      "ETB",
			Notifications: true,
		},
	}
}
