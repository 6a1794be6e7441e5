package handlers

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"selambus/internal/admin"
	"selambus/internal/auth"
	"selambus/internal/http/middleware"
	"selambus/internal/notify"
	"selambus/internal/payment"
	"selambus/internal/search"
	"selambus/internal/seatmap"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

// Deps are the shared services every handler reads from.
type Deps struct {
	Store       storage.Store
	StoreDriver string
	Users       *auth.Users
	Tokens      auth.Tokens
	AdminEmail  string
	Listings    search.ListingSource
	Notifier    notify.Notifier
	Admin       admin.DataSource

	PaymentDelay time.Duration
	NotifyDelay  time.Duration
	// PaymentRand returns the draw source of a new checkout; nil seeds
	// from the clock.
	PaymentRand func() payment.Rand
	Clock       utils.Clock
}

// Handler serves the API. Stateful pages (results, seat map, checkout)
// live in per-client registries; everything else is rebuilt per request
// from storage. Anonymous clients get page state that is never retained.
type Handler struct {
	Deps

	results  registry[*search.Engine]
	seats    registry[*seatmap.Manager]
	payments registry[*payment.Processor]
}

func New(d Deps) *Handler {
	if d.Notifier == nil {
		d.Notifier = notify.LogNotifier{}
	}
	if d.Users == nil {
		d.Users = auth.NewUsers(d.Store)
	}
	return &Handler{
		Deps:     d,
		results:  newRegistry[*search.Engine](auth.SessionTTL, d.Clock),
		seats:    newRegistry[*seatmap.Manager](auth.SessionTTL, d.Clock),
		payments: newRegistry[*payment.Processor](auth.SessionTTL, d.Clock),
	}
}

func (h *Handler) scope(c *gin.Context) storage.Scope {
	return storage.NewScope(h.Store, middleware.GetClientID(c))
}

func (h *Handler) authService(c *gin.Context) auth.Service {
	return auth.Service{
		Scope:      h.scope(c),
		Users:      h.Users,
		Tokens:     h.Tokens,
		AdminEmail: h.AdminEmail,
		Clock:      h.Clock,
		RequestID:  middleware.GetRequestID(c),
	}
}

// registry keeps one value per client id. Entries idle longer than ttl
// are swept at most once per sweepEvery.
type registry[T any] struct {
	mu        sync.Mutex
	items     map[string]*regEntry[T]
	ttl       time.Duration
	clock     utils.Clock
	lastSweep time.Time
}

type regEntry[T any] struct {
	val      T
	lastSeen time.Time
}

const sweepEvery = time.Minute

func newRegistry[T any](ttl time.Duration, clock utils.Clock) registry[T] {
	return registry[T]{items: map[string]*regEntry[T]{}, ttl: ttl, clock: clock}
}

// sweepLocked drops idle entries; r.mu must be held.
func (r *registry[T]) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < sweepEvery {
		return
	}
	r.lastSweep = now
	for id, e := range r.items {
		if now.Sub(e.lastSeen) >= r.ttl {
			delete(r.items, id)
		}
	}
}

func (r *registry[T]) get(id string, create func() T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	r.sweepLocked(now)
	if e, ok := r.items[id]; ok {
		e.lastSeen = now
		return e.val
	}
	if r.items == nil {
		r.items = map[string]*regEntry[T]{}
	}
	v := create()
	r.items[id] = &regEntry[T]{val: v, lastSeen: now}
	return v
}

func (r *registry[T]) peek(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	r.sweepLocked(now)
	e, ok := r.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = now
	return e.val, true
}

func (r *registry[T]) put(id string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	r.sweepLocked(now)
	if r.items == nil {
		r.items = map[string]*regEntry[T]{}
	}
	r.items[id] = &regEntry[T]{val: v, lastSeen: now}
}

func (r *registry[T]) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

func (r *registry[T]) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
