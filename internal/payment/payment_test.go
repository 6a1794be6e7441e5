package payment

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixedRand struct{ f float64 }

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(n int) int   { return n - 1 }

func seedDraft(t *testing.T, scope storage.Scope) models.BookingDraft {
	t.Helper()
	draft := models.BookingDraft{
		BusType:       domain.ClassEconomy,
		SelectedSeats: []string{"A3", "A4"},
		Passengers: []models.PassengerRecord{
			{SeatNumber: "A3", Name: "Sara", Age: "30", Gender: "female", Phone: "0911223344"},
			{SeatNumber: "A4", Name: "Dawit", Age: "32", Gender: "male", Phone: "0911223355"},
		},
		SeatPrice:   150,
		TotalPrice:  300,
		BookingDate: "2025-03-14T09:00:00Z",
	}
	require.NoError(t, scope.SetJSON(context.Background(), storage.Session, storage.KeyBookingData, draft, 0))
	return draft
}

func newTestProcessor(scope storage.Scope, rnd Rand, delay time.Duration) *Processor {
	return NewProcessor(Options{
		Scope: scope,
		Rand:  rnd,
		Delay: delay,
		Clock: func() time.Time { return fixedNow },
	})
}

func telebirrInput() Input {
	return Input{Method: models.MethodTeleBirr, Phone: "0911223344", PIN: "1234"}
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidMobile("0911223344"))
	assert.True(t, ValidMobile("09 1122 3344"))
	assert.False(t, ValidMobile("0811223344"))
	assert.False(t, ValidMobile("+251911223344"))

	assert.True(t, ValidCardNumber("4111 1111 1111 1111"))
	assert.False(t, ValidCardNumber("4111 1111 1111"))

	assert.True(t, ValidExpiry("12/27"))
	assert.False(t, ValidExpiry("13/27"))
	assert.False(t, ValidExpiry("1/27"))

	assert.True(t, ValidCVV("123"))
	assert.False(t, ValidCVV("12a"))

	assert.True(t, ValidPIN("0000"))
	assert.False(t, ValidPIN("12345"))
}

func TestInputValidate(t *testing.T) {
	require.NoError(t, telebirrInput().Validate())

	err := Input{Method: models.MethodCard, CardNumber: "1234", Expiry: "12/27", CVV: "123"}.Validate()
	var fe domain.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 2)
	assert.Equal(t, "cardNumber", fe[0].Field)

	err = Input{Method: models.MethodBank}.Validate()
	assert.True(t, domain.IsValidation(err))

	err = Input{Method: "paypal"}.Validate()
	assert.True(t, domain.IsValidation(err))
}

func TestReceiptCheck(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	assert.NoError(t, Receipt{Name: "slip.png", Data: png}.Check())

	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	assert.NoError(t, Receipt{Name: "slip.pdf", Data: pdf}.Check())

	err := Receipt{Name: "slip.png", Data: []byte("just some text")}.Check()
	assert.True(t, domain.IsValidation(err))

	big := append(append([]byte{}, png...), bytes.Repeat([]byte{0}, MaxReceiptSize)...)
	err = Receipt{Name: "big.png", Data: big}.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5MB")
}

func TestProcessSuccessWritesPaymentData(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	draft := seedDraft(t, scope)
	p := newTestProcessor(scope, fixedRand{f: 0}, 0)

	data, err := p.Process(context.Background(), telebirrInput())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, data.Status)
	assert.Equal(t, models.MethodTeleBirr, data.Method)
	assert.Equal(t, "TB-1741944600000", data.PaymentID)
	assert.Regexp(t, regexp.MustCompile(`^TXN-[0-9A-Z]{9}$`), data.TransactionID)
	assert.Equal(t, "SLM-250314-ZZZZ", data.Reference)
	assert.Equal(t, p.Reference(), data.Reference)
	assert.Equal(t, int64(300), data.Pricing.Subtotal)
	assert.Equal(t, int64(45), data.Pricing.Tax)
	assert.Equal(t, int64(355), data.Pricing.Total)

	var stored models.PaymentData
	require.NoError(t, scope.GetJSON(context.Background(), storage.Session, storage.KeyPaymentData, &stored))
	assert.Equal(t, draft.SelectedSeats, stored.SelectedSeats)
	assert.Equal(t, draft.Passengers, stored.Passengers)
	assert.Equal(t, data.PaymentID, stored.PaymentID)
}

func TestProcessDeclineIsRetryable(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	seedDraft(t, scope)
	p := newTestProcessor(scope, fixedRand{f: 0.99}, 0)
	in := telebirrInput()

	_, err := p.Process(context.Background(), in)
	require.Error(t, err)
	assert.True(t, domain.IsDeclined(err))
	assert.Contains(t, err.Error(), "TeleBirr payment failed")
	assert.False(t, p.Busy())

	var stored models.PaymentData
	err = scope.GetJSON(context.Background(), storage.Session, storage.KeyPaymentData, &stored)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// bank transfers never decline
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	data, err := p.Process(context.Background(), Input{Method: models.MethodBank, Receipt: &Receipt{Data: png}})
	require.NoError(t, err)
	assert.True(t, data.RequiresVerification)
	assert.Equal(t, models.PaymentPendingVerification, data.Status)
	assert.Contains(t, data.PaymentID, "BANK-")
}

func TestProcessWithoutBooking(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	p := newTestProcessor(scope, fixedRand{}, 0)
	_, err := p.Process(context.Background(), telebirrInput())
	assert.True(t, domain.IsNotFound(err))
}

func TestProcessRejectsConcurrentSubmission(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	seedDraft(t, scope)
	p := newTestProcessor(scope, fixedRand{}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Process(ctx, telebirrInput())
		done <- err
	}()

	require.Eventually(t, p.Busy, time.Second, time.Millisecond)

	_, err := p.Process(context.Background(), telebirrInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInFlight))

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("payment did not stop on context cancel")
	}
	assert.False(t, p.Busy())
}

func TestTeleBirrSuccessRateConverges(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	seedDraft(t, scope)
	p := newTestProcessor(scope, rand.New(rand.NewSource(42)), 0)

	const runs = 5000
	ok := 0
	for i := 0; i < runs; i++ {
		_, err := p.Process(context.Background(), telebirrInput())
		if err == nil {
			ok++
			continue
		}
		require.True(t, domain.IsDeclined(err), "unexpected error: %v", err)
	}
	rate := float64(ok) / runs
	assert.InDelta(t, 0.90, rate, 0.03)
}

func TestSummaryLabels(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	seedDraft(t, scope)
	p := newTestProcessor(scope, fixedRand{}, 0)

	s, err := p.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(355), s.Pricing.Total)
	assert.Equal(t, int64(9), s.CardFee)
	assert.Equal(t, "Pay ETB 355 (+ ETB 9 fee)", s.PayLabels["card"])
	assert.Equal(t, "Pay ETB 355 (Manual)", s.PayLabels["bank"])
}
