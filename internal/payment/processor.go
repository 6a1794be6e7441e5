// Package payment simulates the four payment methods of the checkout page.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

var ErrInFlight = errors.New("a payment is already being processed")

// Rand is the randomness used for outcomes and generated ids.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type methodSpec struct {
	prefix      string
	successRate float64
	failMsg     string
}

var methods = map[models.PaymentMethod]methodSpec{
	models.MethodTeleBirr: {"TB-", 0.90, "TeleBirr payment failed. Please check your balance and try again."},
	models.MethodCBEBirr:  {"CBE-", 0.85, "CBE Birr payment failed. Please check your balance and try again."},
	models.MethodCard:     {"CARD-", 0.95, "Card payment failed. Please check your card details and try again."},
	models.MethodBank:     {"BANK-", 1, ""},
}

const (
	msgSuccess = "Payment processed successfully"
	msgBank    = "Bank transfer receipt uploaded successfully. Your booking will be confirmed within 24 hours."
)

type Options struct {
	Scope     storage.Scope
	Rand      Rand
	Delay     time.Duration
	Clock     utils.Clock
	RequestID string
}

// Processor handles the payment page of one client. Only one payment may
// be processed at a time.
type Processor struct {
	scope     storage.Scope
	delay     time.Duration
	clock     utils.Clock
	requestID string

	mu        sync.Mutex
	rnd       Rand
	inFlight  bool
	reference string
}

func NewProcessor(opts Options) *Processor {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Processor{
		scope:     opts.Scope,
		delay:     opts.Delay,
		clock:     opts.Clock,
		requestID: opts.RequestID,
		rnd:       rnd,
	}
}

// Reference returns the bank reference of this checkout, generated on
// first use.
func (p *Processor) Reference() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.referenceLocked()
}

func (p *Processor) referenceLocked() string {
	if p.reference == "" {
		p.reference = fmt.Sprintf("SLM-%s-%s", p.clock.Now().Format("060102"), p.randomBase36Locked(4))
	}
	return p.reference
}

// Busy reports whether a payment is in flight.
func (p *Processor) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Summary is the order summary shown next to the payment form.
type Summary struct {
	Draft     models.BookingDraft `json:"booking"`
	Pricing   models.Pricing      `json:"pricing"`
	Reference string              `json:"reference"`
	CardFee   int64               `json:"cardFee"`
	PayLabels map[string]string   `json:"payLabels"`
}

func (p *Processor) Summary(ctx context.Context) (Summary, error) {
	draft, err := p.loadDraft(ctx)
	if err != nil {
		return Summary{}, err
	}
	pricing := draft.Pricing()
	fee := models.CardFee(pricing.Total)
	total := utils.FormatBirr(pricing.Total)

	return Summary{
		Draft:     draft,
		Pricing:   pricing,
		Reference: p.Reference(),
		CardFee:   fee,
		PayLabels: map[string]string{
			string(models.MethodTeleBirr): "Pay " + total,
			string(models.MethodCBEBirr):  "Pay " + total,
			string(models.MethodCard):     fmt.Sprintf("Pay %s (+ %s fee)", total, utils.FormatBirr(fee)),
			string(models.MethodBank):     "Pay " + total + " (Manual)",
		},
	}, nil
}

// Process validates in, waits out the simulated gateway latency and
// draws the outcome. A decline leaves stored state untouched so the same
// input can be resubmitted. On success the merged payment data is written
// for the confirmation stage.
func (p *Processor) Process(ctx context.Context, in Input) (models.PaymentData, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return models.PaymentData{}, domain.ConflictError{Resource: "payment", Msg: ErrInFlight.Error(), Err: ErrInFlight}
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	if err := in.Validate(); err != nil {
		return models.PaymentData{}, err
	}
	cfg := methods[in.Method]

	draft, err := p.loadDraft(ctx)
	if err != nil {
		return models.PaymentData{}, err
	}

	utils.LogEventf(p.requestID, "payment", "process", "method=%s seats=%d", in.Method, len(draft.SelectedSeats))
	if err := p.wait(ctx); err != nil {
		utils.LogEvent(p.requestID, "payment", "process", "aborted: "+err.Error())
		return models.PaymentData{}, err
	}

	p.mu.Lock()
	ok := p.rnd.Float64() < cfg.successRate
	var rec models.PaymentRecord
	if ok {
		now := p.clock.Now()
		rec = models.PaymentRecord{
			Method:        in.Method,
			PaymentID:     fmt.Sprintf("%s%d", cfg.prefix, now.UnixMilli()),
			TransactionID: "TXN-" + p.randomBase36Locked(9),
			Reference:     p.referenceLocked(),
			Success:       true,
			Status:        models.PaymentCompleted,
			Message:       msgSuccess,
			Timestamp:     now.UTC().Format(time.RFC3339),
		}
		if in.Method == models.MethodBank {
			rec.RequiresVerification = true
			rec.Status = models.PaymentPendingVerification
			rec.Message = msgBank
		}
	}
	p.mu.Unlock()

	if !ok {
		utils.LogEvent(p.requestID, "payment", "process", "declined method="+string(in.Method))
		return models.PaymentData{}, domain.DeclinedError{Msg: cfg.failMsg}
	}

	data := models.PaymentData{BookingDraft: draft, Pricing: draft.Pricing(), PaymentRecord: rec}
	if err := p.scope.SetJSON(ctx, storage.Session, storage.KeyPaymentData, data, 0); err != nil {
		utils.LogEvent(p.requestID, "payment", "process", "store payment failed: "+err.Error())
		return models.PaymentData{}, domain.InternalError{Msg: "could not save payment", Err: err}
	}
	utils.LogEventf(p.requestID, "payment", "process", "ok payment_id=%s reference=%s status=%s",
		rec.PaymentID, rec.Reference, rec.Status)
	return data, nil
}

func (p *Processor) loadDraft(ctx context.Context) (models.BookingDraft, error) {
	if p.scope.Store == nil {
		return models.BookingDraft{}, domain.InternalError{Msg: "payment storage is not configured"}
	}
	var draft models.BookingDraft
	err := p.scope.GetJSON(ctx, storage.Session, storage.KeyBookingData, &draft)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return draft, domain.NotFoundError{Resource: "booking", Msg: "no booking in progress, select seats first", Err: err}
	case err != nil:
		utils.LogEvent(p.requestID, "payment", "load_booking", err.Error())
		return draft, domain.NotFoundError{Resource: "booking", Msg: "booking data is unreadable, select seats again", Err: err}
	}
	return draft, nil
}

func (p *Processor) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (p *Processor) randomBase36Locked(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[p.rnd.Intn(len(base36))])
	}
	return b.String()
}
