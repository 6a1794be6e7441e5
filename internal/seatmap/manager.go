// Package seatmap holds the seat selection state of one client: the
// selection set over a fixed layout, the passenger forms attached to it
// and the handoff of a booking draft to the payment stage.
package seatmap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

const MaxSeats = 10

var (
	ErrMaxSeats = errors.New("maximum 10 seats can be selected per booking")
	ErrNoSeats  = errors.New("please select at least one seat")
)

// Phase is derived from the selection and the passenger forms on every read.
type Phase string

const (
	PhaseIdle                     Phase = "Idle"
	PhaseSeatsPartiallySelected   Phase = "SeatsPartiallySelected"
	PhaseReadyForPassengerEntry   Phase = "ReadyForPassengerEntry"
	PhaseValidatedReadyForPayment Phase = "ValidatedReadyForPayment"
)

type Options struct {
	Class     domain.BusClass
	Booked    []string
	WomenOnly []string
	Prices    map[domain.BusClass]int64

	// Scope is where bookingData is written and selectedBus is read.
	Scope     storage.Scope
	Clock     utils.Clock
	RequestID string
}

type Manager struct {
	mu sync.Mutex

	layout    Layout
	prices    map[domain.BusClass]int64
	booked    map[string]struct{}
	womenOnly map[string]struct{}
	selected  []string
	forms     map[string]models.PassengerRecord

	scope     storage.Scope
	clock     utils.Clock
	requestID string

	subs    map[int]func(View)
	nextSub int
}

func NewManager(opts Options) *Manager {
	class := opts.Class
	if !class.Valid() {
		class = domain.ClassEconomy
	}
	layout, _ := LayoutFor(class)

	booked := opts.Booked
	if booked == nil {
		booked = DefaultBooked
	}
	women := opts.WomenOnly
	if women == nil {
		women = DefaultWomenOnly
	}
	prices := opts.Prices
	if prices == nil {
		prices = DefaultPrices
	}

	return &Manager{
		layout:    layout,
		prices:    prices,
		booked:    toSet(booked),
		womenOnly: toSet(women),
		forms:     map[string]models.PassengerRecord{},
		scope:     opts.Scope,
		clock:     opts.Clock,
		requestID: opts.RequestID,
		subs:      map[int]func(View){},
	}
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// ToggleSeat flips seatID in the selection. Booked and unknown seats are
// ignored without error. Adding past MaxSeats leaves the state unchanged.
func (m *Manager) ToggleSeat(seatID string) error {
	seatID = strings.ToUpper(strings.TrimSpace(seatID))

	m.mu.Lock()
	if !m.layout.Has(seatID) || m.isBooked(seatID) {
		m.mu.Unlock()
		return nil
	}

	if i := m.indexOf(seatID); i >= 0 {
		m.selected = append(m.selected[:i:i], m.selected[i+1:]...)
		delete(m.forms, seatID)
	} else {
		if len(m.selected) >= MaxSeats {
			m.mu.Unlock()
			utils.LogEvent(m.requestID, "seatmap", "toggle", "max seats reached, rejected "+seatID)
			return domain.ConflictError{Resource: "seats", Msg: ErrMaxSeats.Error(), Err: ErrMaxSeats}
		}
		m.selected = append(m.selected, seatID)
		m.forms[seatID] = models.PassengerRecord{SeatNumber: seatID}
	}
	view, subs := m.snapshotLocked()
	m.mu.Unlock()

	notify(subs, view)
	return nil
}

// ClearAllSeats empties the selection and drops every passenger form.
func (m *Manager) ClearAllSeats() {
	m.mu.Lock()
	m.selected = nil
	m.forms = map[string]models.PassengerRecord{}
	view, subs := m.snapshotLocked()
	m.mu.Unlock()

	notify(subs, view)
}

// SwitchBusClass replaces the active layout. Selected seats that do not
// exist in the new layout, or are booked there, are dropped with their
// forms. The remaining seats keep their selection order.
func (m *Manager) SwitchBusClass(class domain.BusClass) error {
	layout, ok := LayoutFor(class)
	if !ok {
		return domain.ValidationError{Field: "busType", Msg: "unknown bus class " + string(class)}
	}

	m.mu.Lock()
	kept := m.selected[:0:0]
	var dropped []string
	for _, id := range m.selected {
		if layout.Has(id) && !m.isBooked(id) {
			kept = append(kept, id)
			continue
		}
		dropped = append(dropped, id)
		delete(m.forms, id)
	}
	m.layout = layout
	m.selected = kept
	view, subs := m.snapshotLocked()
	m.mu.Unlock()

	if len(dropped) > 0 {
		utils.LogEvent(m.requestID, "seatmap", "switch_class", string(class)+" dropped "+strings.Join(dropped, ","))
	}
	notify(subs, view)
	return nil
}

// SetPassenger replaces the form attached to a selected seat.
func (m *Manager) SetPassenger(seatID string, rec models.PassengerRecord) error {
	seatID = strings.ToUpper(strings.TrimSpace(seatID))

	m.mu.Lock()
	if m.indexOf(seatID) < 0 {
		m.mu.Unlock()
		return domain.NotFoundError{Resource: "seat", Msg: "seat " + seatID + " is not selected"}
	}
	rec.SeatNumber = seatID
	m.forms[seatID] = rec
	view, subs := m.snapshotLocked()
	m.mu.Unlock()

	notify(subs, view)
	return nil
}

// ValidatePassengerData checks the form of every selected seat in
// selection order.
func (m *Manager) ValidatePassengerData() Validation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateLocked()
}

func (m *Manager) validateLocked() Validation {
	v := Validation{IsValid: true, Passengers: make([]models.PassengerRecord, 0, len(m.selected))}
	for _, id := range m.selected {
		p := m.forms[id]
		p.SeatNumber = id
		if errs := validatePassenger(p); len(errs) > 0 {
			v.IsValid = false
			v.Violations = append(v.Violations, errs...)
		}
		v.Passengers = append(v.Passengers, p)
	}
	return v
}

// ProceedToPayment validates the selection and writes the booking draft.
// Nothing is written when there are no seats or a form is invalid.
func (m *Manager) ProceedToPayment(ctx context.Context) (models.BookingDraft, error) {
	m.mu.Lock()
	if len(m.selected) == 0 {
		m.mu.Unlock()
		return models.BookingDraft{}, domain.ValidationError{Field: "seats", Msg: ErrNoSeats.Error(), Err: ErrNoSeats}
	}
	v := m.validateLocked()
	if !v.IsValid {
		m.mu.Unlock()
		utils.LogEventf(m.requestID, "seatmap", "proceed", "blocked by %d invalid field(s)", len(v.Violations))
		return models.BookingDraft{}, domain.FieldErrors(v.Violations)
	}

	price := m.prices[m.layout.Class]
	draft := models.BookingDraft{
		BusType:       m.layout.Class,
		SelectedSeats: append([]string(nil), m.selected...),
		Passengers:    v.Passengers,
		SeatPrice:     price,
		TotalPrice:    price * int64(len(m.selected)),
		BookingDate:   m.clock.Now().UTC().Format(time.RFC3339),
	}
	m.mu.Unlock()

	if m.scope.Store == nil {
		return models.BookingDraft{}, domain.InternalError{Msg: "booking storage is not configured"}
	}
	m.attachTrip(ctx, &draft)

	if err := m.scope.SetJSON(ctx, storage.Session, storage.KeyBookingData, draft, 0); err != nil {
		utils.LogEvent(m.requestID, "seatmap", "proceed", "store booking failed: "+err.Error())
		return models.BookingDraft{}, domain.InternalError{Msg: "could not save booking", Err: err}
	}
	utils.LogEventf(m.requestID, "seatmap", "proceed", "class=%s seats=%s total=%d",
		draft.BusType, strings.Join(draft.SelectedSeats, ","), draft.TotalPrice)
	return draft, nil
}

// attachTrip copies route and bus details from the listing picked on the
// results page, when there is one.
func (m *Manager) attachTrip(ctx context.Context, draft *models.BookingDraft) {
	var bus models.BusListing
	if err := m.scope.GetJSON(ctx, storage.Session, storage.KeySelectedBus, &bus); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			utils.LogEvent(m.requestID, "seatmap", "proceed", "selectedBus unreadable: "+err.Error())
		}
		return
	}

	route := &models.RouteInfo{
		From:              bus.DepartureLocation,
		To:                bus.ArrivalLocation,
		DepartureTime:     bus.DepartureTime,
		ArrivalTime:       bus.ArrivalTime,
		DepartureTerminal: bus.DepartureTerminal,
		ArrivalTerminal:   bus.ArrivalTerminal,
	}
	var search models.SearchCriteria
	if err := m.scope.GetJSON(ctx, storage.Session, storage.KeySearchData, &search); err == nil {
		route.DepartureDate = search.DepartureDate
	}
	draft.Route = route
	draft.Bus = &models.BusInfo{Company: bus.Company, Type: bus.BusType, Logo: bus.Logo, Color: bus.Color}
}

// Phase derives the current state from selection and form contents.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phaseLocked()
}

func (m *Manager) phaseLocked() Phase {
	if len(m.selected) == 0 {
		return PhaseIdle
	}
	if m.validateLocked().IsValid {
		return PhaseValidatedReadyForPayment
	}
	for _, id := range m.selected {
		if m.forms[id].Touched() {
			return PhaseReadyForPassengerEntry
		}
	}
	return PhaseSeatsPartiallySelected
}

// Subscribe registers fn to receive the view after every mutation. The
// returned func removes the subscription.
func (m *Manager) Subscribe(fn func(View)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) snapshotLocked() (View, []func(View)) {
	view := m.viewLocked()
	subs := make([]func(View), 0, len(m.subs))
	for i := 0; i < m.nextSub; i++ {
		if fn, ok := m.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return view, subs
}

func notify(subs []func(View), view View) {
	for _, fn := range subs {
		fn(view)
	}
}

func (m *Manager) isBooked(id string) bool {
	_, ok := m.booked[id]
	return ok
}

func (m *Manager) indexOf(id string) int {
	for i, s := range m.selected {
		if s == id {
			return i
		}
	}
	return -1
}
