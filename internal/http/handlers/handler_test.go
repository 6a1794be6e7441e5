package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selambus/internal/auth"
	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/http/middleware"
	"selambus/internal/payment"
	"selambus/internal/search"
	"selambus/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(hd *Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ClientID())
	r.GET("/api/results", hd.GetResults)
	r.GET("/api/seats", hd.GetSeats)
	r.POST("/api/seats/proceed", hd.ProceedToPayment)
	r.GET("/api/payment", hd.PaymentSummary)
	return r
}

func serve(r *gin.Engine, method, path, client string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if client != "" {
		req.Header.Set(middleware.HeaderClientID, client)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnonymousRequestsRetainNoPageState(t *testing.T) {
	hd := New(Deps{Store: storage.NewMemoryStore(), Listings: search.StaticSource{}})
	r := newTestEngine(hd)

	for i := 0; i < 500; i++ {
		for _, path := range []string{"/api/seats", "/api/results", "/api/payment"} {
			serve(r, http.MethodGet, path, "")
		}
	}
	assert.Equal(t, 0, hd.seats.size())
	assert.Equal(t, 0, hd.results.size())
	assert.Equal(t, 0, hd.payments.size())

	w := serve(r, http.MethodGet, "/api/seats", "browser_1")
	require.Equal(t, http.StatusOK, w.Code)
	serve(r, http.MethodGet, "/api/seats", "browser_1")
	assert.Equal(t, 1, hd.seats.size())
}

func TestIdleClientsAreEvicted(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	hd := New(Deps{Store: storage.NewMemoryStore(), Clock: func() time.Time { return now }})
	r := newTestEngine(hd)

	serve(r, http.MethodGet, "/api/seats", "c1")
	serve(r, http.MethodGet, "/api/seats", "c2")
	require.Equal(t, 2, hd.seats.size())

	now = now.Add(auth.SessionTTL - time.Hour)
	serve(r, http.MethodGet, "/api/seats", "c2")
	assert.Equal(t, 2, hd.seats.size(), "nobody idle for a full session yet")

	now = now.Add(2 * time.Hour)
	serve(r, http.MethodGet, "/api/seats", "c3")
	assert.Equal(t, 2, hd.seats.size(), "c1 evicted, c2 and c3 kept")
	_, ok := hd.seats.peek("c1")
	assert.False(t, ok)
}

func TestProceedKeepsCheckoutWhileCharging(t *testing.T) {
	store := storage.NewMemoryStore()
	hd := New(Deps{Store: store})
	r := newTestEngine(hd)

	scope := storage.NewScope(store, "c1")
	draft := models.BookingDraft{
		BusType:       domain.ClassEconomy,
		SelectedSeats: []string{"A3"},
		Passengers:    []models.PassengerRecord{{SeatNumber: "A3", Name: "Sara", Age: "30", Gender: "female", Phone: "0911223344"}},
		SeatPrice:     150,
		TotalPrice:    150,
	}
	require.NoError(t, scope.SetJSON(context.Background(), storage.Session, storage.KeyBookingData, draft, 0))

	p := payment.NewProcessor(payment.Options{Scope: scope, Delay: time.Hour})
	hd.payments.put("c1", p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Process(ctx, payment.Input{Method: models.MethodTeleBirr, Phone: "0911223344", PIN: "1234"})
		done <- err
	}()
	require.Eventually(t, p.Busy, time.Second, 5*time.Millisecond)

	w := serve(r, http.MethodPost, "/api/seats/proceed", "c1")
	assert.Equal(t, http.StatusConflict, w.Code)
	kept, ok := hd.payments.peek("c1")
	require.True(t, ok)
	assert.Same(t, p, kept)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// once idle, proceeding starts a fresh checkout (400 here: no seats picked)
	w = serve(r, http.MethodPost, "/api/seats/proceed", "c1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
