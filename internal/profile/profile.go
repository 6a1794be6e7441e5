// Package profile backs the profile dashboard: the account card, booking
// history, wallet and settings, all kept in the client's local area.
package profile

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"selambus/internal/auth"
	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

// Data is the whole dashboard state of one client.
type Data struct {
	User         models.ProfileUser   `json:"user"`
	Bookings     []models.UserBooking `json:"bookings"`
	Transactions []models.Transaction `json:"transactions"`
}

type Overview struct {
	User   models.ProfileUser   `json:"user"`
	Recent []models.UserBooking `json:"recentActivity"`
}

type Wallet struct {
	Balance          float64              `json:"walletBalance"`
	BalanceLabel     string               `json:"walletBalanceLabel"`
	TotalDeposits    float64              `json:"totalDeposits"`
	TotalWithdrawals float64              `json:"totalWithdrawals"`
	Transactions     []models.Transaction `json:"transactions"`
}

type UpdateInput struct {
	Name  string `json:"fullName"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PasswordInput struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
	Confirm string `json:"confirmPassword"`
}

type Service struct {
	Scope storage.Scope
	// Owner seeds the account card when the client is logged in.
	Owner *models.PublicUser
	// Users, when set, receives password changes of the owner.
	Users     *auth.Users
	Rand      Rand
	Delay     time.Duration
	Clock     utils.Clock
	RequestID string
}

var clientLocks sync.Map

func (s Service) lock() func() {
	v, _ := clientLocks.LoadOrStore(s.Scope.ClientID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Load returns the dashboard, seeding each missing record.
func (s Service) Load(ctx context.Context) (Data, error) {
	defer s.lock()()
	return s.load(ctx)
}

func (s Service) load(ctx context.Context) (Data, error) {
	var d Data
	now := s.Clock.Now()
	var r Rand

	seed := func(name string, dst any, gen func() any) error {
		err := s.Scope.GetJSON(ctx, storage.Local, name, dst)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrCorrupt) {
			return err
		}
		if errors.Is(err, storage.ErrCorrupt) {
			utils.LogEvent(s.RequestID, "profile", "load", "reseeding "+name+": "+err.Error())
		}
		if r == nil {
			r = s.rand(now)
		}
		v := gen()
		if err := s.Scope.SetJSON(ctx, storage.Local, name, v, 0); err != nil {
			return err
		}
		return storage.GetJSON(ctx, s.Scope.Store, storage.Key(storage.Local, s.Scope.ClientID, name), dst)
	}

	if err := seed(storage.KeyCurrentUser, &d.User, func() any { return sampleUser(s.Owner) }); err != nil {
		return Data{}, domain.InternalError{Msg: "failed to load profile", Err: err}
	}
	if err := seed(storage.KeyUserBookings, &d.Bookings, func() any { return sampleBookings(r, now) }); err != nil {
		return Data{}, domain.InternalError{Msg: "failed to load bookings", Err: err}
	}
	if err := seed(storage.KeyUserTransactions, &d.Transactions, func() any { return sampleTransactions(r, now) }); err != nil {
		return Data{}, domain.InternalError{Msg: "failed to load transactions", Err: err}
	}
	return d, nil
}

func (s Service) rand(now time.Time) Rand {
	if s.Rand != nil {
		return s.Rand
	}
	return rand.New(rand.NewSource(now.UnixNano()))
}

func (s Service) save(ctx context.Context, d Data) error {
	if err := s.Scope.SetJSON(ctx, storage.Local, storage.KeyUserBookings, d.Bookings, 0); err != nil {
		return err
	}
	if err := s.Scope.SetJSON(ctx, storage.Local, storage.KeyUserTransactions, d.Transactions, 0); err != nil {
		return err
	}
	return s.Scope.SetJSON(ctx, storage.Local, storage.KeyCurrentUser, d.User, 0)
}

// Overview returns the account card and the five most recent bookings.
func (s Service) Overview(ctx context.Context) (Overview, error) {
	d, err := s.Load(ctx)
	if err != nil {
		return Overview{}, err
	}
	recent := append([]models.UserBooking(nil), d.Bookings...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date > recent[j].Date })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return Overview{User: d.User, Recent: recent}, nil
}

// Bookings filters by status ("all" or empty keeps every status) and date
// window.
func (s Service) Bookings(ctx context.Context, status string, window domain.DateWindow) ([]models.UserBooking, error) {
	d, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBookings(d.Bookings, status, window, s.Clock.Now()), nil
}

func FilterBookings(in []models.UserBooking, status string, window domain.DateWindow, now time.Time) []models.UserBooking {
	out := make([]models.UserBooking, 0, len(in))
	for _, b := range in {
		if status != "" && status != "all" && b.Status != status {
			continue
		}
		if !window.Contains(b.Date, now) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s Service) Wallet(ctx context.Context) (Wallet, error) {
	d, err := s.Load(ctx)
	if err != nil {
		return Wallet{}, err
	}
	w := Wallet{
		Balance:      d.User.WalletBalance,
		BalanceLabel: utils.FormatBirrFloat(d.User.WalletBalance),
		Transactions: d.Transactions,
	}
	for _, t := range d.Transactions {
		switch t.Type {
		case models.TxDeposit:
			w.TotalDeposits += t.Amount
		case models.TxWithdrawal:
			if t.Amount < 0 {
				w.TotalWithdrawals -= t.Amount
			} else {
				w.TotalWithdrawals += t.Amount
			}
		}
	}
	return w, nil
}

// CancelBooking marks the booking cancelled, refunds its amount to the
// wallet and prepends the refund transaction.
func (s Service) CancelBooking(ctx context.Context, id string) (models.UserBooking, error) {
	defer s.lock()()
	d, err := s.load(ctx)
	if err != nil {
		return models.UserBooking{}, err
	}

	idx := -1
	for i := range d.Bookings {
		if d.Bookings[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.UserBooking{}, domain.NotFoundError{Resource: "booking"}
	}
	b := &d.Bookings[idx]
	if b.Status == models.BookingCancelled {
		return models.UserBooking{}, domain.ConflictError{Resource: "booking", Msg: "already cancelled"}
	}

	now := s.Clock.Now()
	b.Status = models.BookingCancelled
	d.User.WalletBalance += b.Amount
	d.Transactions = prepend(d.Transactions, models.Transaction{
		ID:          fmt.Sprintf("TX%d", now.UnixMilli()),
		Type:        models.TxRefund,
		Amount:      b.Amount,
		Date:        utils.FormatDate(now),
		Description: "Refund for cancelled booking " + id,
	})

	if err := s.save(ctx, d); err != nil {
		return models.UserBooking{}, domain.InternalError{Msg: "failed to cancel booking", Err: err}
	}
	utils.LogEventf(s.RequestID, "profile", "cancel_booking", "booking=%s refund=%.0f", id, b.Amount)
	return *b, nil
}

// AddFunds credits the wallet after the simulated processing delay.
func (s Service) AddFunds(ctx context.Context, amount float64, method string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, domain.ValidationError{Field: "fundAmount", Msg: "Please enter a valid amount!"}
	}
	if err := wait(ctx, s.Delay); err != nil {
		return models.Transaction{}, err
	}

	defer s.lock()()
	d, err := s.load(ctx)
	if err != nil {
		return models.Transaction{}, err
	}
	now := s.Clock.Now()
	tx := models.Transaction{
		ID:          fmt.Sprintf("TX%d", now.UnixMilli()),
		Type:        models.TxDeposit,
		Amount:      amount,
		Date:        utils.FormatDate(now),
		Description: "Wallet deposit via " + strings.TrimSpace(method),
	}
	d.User.WalletBalance += amount
	d.Transactions = prepend(d.Transactions, tx)
	if err := s.save(ctx, d); err != nil {
		return models.Transaction{}, domain.InternalError{Msg: "failed to add funds", Err: err}
	}
	utils.LogEventf(s.RequestID, "profile", "add_funds", "amount=%.2f method=%s", amount, method)
	return tx, nil
}

func (s Service) UpdateProfile(ctx context.Context, in UpdateInput) (models.ProfileUser, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	var errs domain.FieldErrors
	if in.Name == "" {
		errs = append(errs, domain.ValidationError{Field: "fullName", Msg: "Name is required"})
	}
	if !utils.IsEmail(in.Email) {
		errs = append(errs, domain.ValidationError{Field: "email", Msg: "Please enter a valid email address"})
	}
	if !utils.IsEthiopianPhone(in.Phone) {
		errs = append(errs, domain.ValidationError{Field: "phone", Msg: "Please enter a valid phone number"})
	}
	if len(errs) > 0 {
		return models.ProfileUser{}, errs
	}

	defer s.lock()()
	d, err := s.load(ctx)
	if err != nil {
		return models.ProfileUser{}, err
	}
	d.User.Name, d.User.Email, d.User.Phone = in.Name, in.Email, in.Phone
	if err := s.Scope.SetJSON(ctx, storage.Local, storage.KeyCurrentUser, d.User, 0); err != nil {
		return models.ProfileUser{}, domain.InternalError{Msg: "failed to update profile", Err: err}
	}
	utils.LogEvent(s.RequestID, "profile", "update", "user="+d.User.ID)
	return d.User, nil
}

// ChangePassword checks the confirmation and length. With a users table and
// a logged in owner it also verifies the current password and stores the
// new hash.
func (s Service) ChangePassword(ctx context.Context, in PasswordInput) error {
	if in.New != in.Confirm {
		return domain.ValidationError{Field: "confirmPassword", Msg: "New passwords do not match!"}
	}
	if len(in.New) < 8 {
		return domain.ValidationError{Field: "newPassword", Msg: "Password must be at least 8 characters long!"}
	}
	if s.Users == nil || s.Owner == nil {
		utils.LogEvent(s.RequestID, "profile", "change_password", "no account, accepted")
		return nil
	}

	_, err := s.Users.Update(ctx, s.Owner.ID, func(u *models.User) error {
		if u.PasswordHash != "" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Current)) != nil {
			return domain.ValidationError{Field: "currentPassword", Msg: "Current password is incorrect"}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = string(hash)
		return nil
	})
	switch {
	case err == nil:
		utils.LogEvent(s.RequestID, "profile", "change_password", "user="+s.Owner.ID)
		return nil
	case domain.IsValidation(err):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return domain.NotFoundError{Resource: "user"}
	default:
		return domain.InternalError{Msg: "failed to change password", Err: err}
	}
}

// Logout drops the dashboard records so the next visit reseeds them.
func (s Service) Logout(ctx context.Context) error {
	defer s.lock()()
	for _, name := range []string{storage.KeyCurrentUser, storage.KeyUserBookings, storage.KeyUserTransactions} {
		if err := s.Scope.Delete(ctx, storage.Local, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return domain.InternalError{Msg: "failed to clear profile", Err: err}
		}
	}
	return nil
}

func prepend(txs []models.Transaction, tx models.Transaction) []models.Transaction {
	return append([]models.Transaction{tx}, txs...)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
