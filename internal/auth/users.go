package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

// Users is the selambus_users table, one JSON array shared by every
// client. Writes are serialized.
type Users struct {
	Store storage.Store
	mu    sync.Mutex
}

func NewUsers(s storage.Store) *Users {
	return &Users{Store: s}
}

func (u *Users) key() string {
	return storage.Key(storage.Local, storage.GlobalClient, storage.KeyUsers)
}

func (u *Users) list(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := storage.GetJSON(ctx, u.Store, u.key(), &out)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

// List returns every registered user.
func (u *Users) List(ctx context.Context) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.list(ctx)
}

// Add appends user unless check rejects the current table.
func (u *Users) Add(ctx context.Context, user models.User, check func([]models.User) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	all, err := u.list(ctx)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(all); err != nil {
			return err
		}
	}
	all = append(all, user)
	return storage.SetJSON(ctx, u.Store, u.key(), all, 0)
}

// Update rewrites the user with the same id.
func (u *Users) Update(ctx context.Context, id string, fn func(*models.User) error) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	all, err := u.list(ctx)
	if err != nil {
		return models.User{}, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if err := fn(&all[i]); err != nil {
			return models.User{}, err
		}
		if err := storage.SetJSON(ctx, u.Store, u.key(), all, 0); err != nil {
			return models.User{}, err
		}
		return all[i], nil
	}
	return models.User{}, storage.ErrNotFound
}

// FindByIdentifier matches an email (case-insensitive) or a phone number.
func FindByIdentifier(all []models.User, ident string) (models.User, bool) {
	ident = strings.TrimSpace(ident)
	phone := utils.PhoneKey(ident)
	for _, u := range all {
		if strings.EqualFold(u.Email, ident) || (u.Phone != "" && utils.PhoneKey(u.Phone) == phone) {
			return u, true
		}
	}
	return models.User{}, false
}
