// Package storage is the server-side stand-in for browser sessionStorage
// and localStorage. Every page stage reads the previous stage's key and
// writes its own; values are JSON snapshots handed off by value.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Storage key names shared between stages.
const (
	KeySearchData       = "searchData"
	KeySelectedBus      = "selectedBus"
	KeyBookingData      = "bookingData"
	KeyPaymentData      = "paymentData"
	KeySession          = "selambus_session"
	KeyUsers            = "selambus_users"
	KeyCurrentUser      = "currentUser"
	KeyUserBookings     = "userBookings"
	KeyUserTransactions = "userTransactions"
)

// GlobalClient owns records shared by every client, like the users table.
const GlobalClient = "global"

var (
	ErrNotFound = errors.New("storage: key not found")
	ErrCorrupt  = errors.New("storage: corrupt value")
)

// Store is a flat key-value store. A zero ttl keeps the value until deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Area is one of the two browser storage areas.
type Area string

const (
	Session Area = "session"
	Local   Area = "local"
)

// Key scopes name to one client's storage area.
func Key(area Area, clientID, name string) string {
	return fmt.Sprintf("%s:%s:%s", area, clientID, name)
}

// Scope binds a Store to one client, mimicking the two storage areas a
// browser tab sees.
type Scope struct {
	Store    Store
	ClientID string
}

func NewScope(s Store, clientID string) Scope {
	return Scope{Store: s, ClientID: clientID}
}

func (s Scope) GetJSON(ctx context.Context, area Area, name string, dst any) error {
	return GetJSON(ctx, s.Store, Key(area, s.ClientID, name), dst)
}

func (s Scope) SetJSON(ctx context.Context, area Area, name string, v any, ttl time.Duration) error {
	return SetJSON(ctx, s.Store, Key(area, s.ClientID, name), v, ttl)
}

func (s Scope) Delete(ctx context.Context, area Area, name string) error {
	return s.Store.Delete(ctx, Key(area, s.ClientID, name))
}

// Global returns the scope of records shared by all clients.
func (s Scope) Global() Scope {
	return Scope{Store: s.Store, ClientID: GlobalClient}
}

func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw, ttl)
}
