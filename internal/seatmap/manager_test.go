package seatmap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, storage.Scope) {
	t.Helper()
	scope := storage.NewScope(storage.NewMemoryStore(), "client-test")
	m := NewManager(Options{
		Class: domain.ClassEconomy,
		Scope: scope,
		Clock: func() time.Time { return fixedNow },
	})
	return m, scope
}

func validPassenger(name string) models.PassengerRecord {
	return models.PassengerRecord{Name: name, Age: "30", Gender: "female", Phone: "0911223344"}
}

func TestLayouts(t *testing.T) {
	eco, ok := LayoutFor(domain.ClassEconomy)
	require.True(t, ok)
	assert.Len(t, eco.Rows, 12)
	assert.Equal(t, []string{"A1", "A2", "", "A3", "A4"}, eco.Rows[0])
	assert.Len(t, eco.SeatIDs(), 48)

	biz, _ := LayoutFor(domain.ClassBusiness)
	assert.Equal(t, []string{"J1", "", "J2", "J3"}, biz.Rows[9])
	assert.False(t, biz.Has("A4"))

	lux, _ := LayoutFor(domain.ClassLuxury)
	assert.Len(t, lux.SeatIDs(), 16)
	assert.False(t, lux.Has("A3"))

	_, ok = LayoutFor("sleeper")
	assert.False(t, ok)
}

func TestToggleBookedSeatIsIgnored(t *testing.T) {
	m, _ := newTestManager(t)
	for _, id := range DefaultBooked {
		require.NoError(t, m.ToggleSeat(id))
	}
	assert.Empty(t, m.View().SelectedSeats)

	require.NoError(t, m.ToggleSeat("Z9"))
	assert.Empty(t, m.View().SelectedSeats)
}

func TestToggleDeselects(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.ToggleSeat("B1"))
	require.NoError(t, m.ToggleSeat("A3"))
	assert.Equal(t, []string{"B1"}, m.View().SelectedSeats)
}

func TestMaxSeatsRejectsEleventh(t *testing.T) {
	m, _ := newTestManager(t)
	seats := []string{"A3", "A4", "B1", "B2", "B4", "C1", "C2", "C3", "D1", "D2"}
	for _, id := range seats {
		require.NoError(t, m.ToggleSeat(id))
	}

	for i := 0; i < 2; i++ {
		err := m.ToggleSeat("E3")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMaxSeats))
		assert.True(t, domain.IsConflict(err))
		assert.Equal(t, seats, m.View().SelectedSeats)
	}

	// deselecting still works at capacity
	require.NoError(t, m.ToggleSeat("A3"))
	assert.Equal(t, 9, m.View().SeatCount)
}

func TestClearAllSeats(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.SetPassenger("A3", validPassenger("Sara")))

	m.ClearAllSeats()

	v := m.View()
	assert.Empty(t, v.SelectedSeats)
	assert.Empty(t, v.Passengers)
	assert.Equal(t, PhaseIdle, v.Phase)
	assert.Equal(t, "No seats selected", v.Summary)
}

func TestEconomyTotal(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ToggleSeat("A1"))
	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.ToggleSeat("A4"))

	v := m.View()
	assert.Equal(t, []string{"A3", "A4"}, v.SelectedSeats)
	assert.Equal(t, int64(300), v.TotalPrice)
	assert.Equal(t, "ETB 300", v.TotalLabel)
	assert.Equal(t, "A3, A4", v.Summary)
}

func TestViewCellStates(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ToggleSeat("E1"))

	v := m.View()
	row0 := v.Rows[0]
	assert.Equal(t, models.SeatBooked, row0[0].State)
	assert.False(t, row0[0].Clickable)
	assert.True(t, row0[2].Aisle)
	assert.Equal(t, models.SeatAvailable, row0[3].State)

	rowE := v.Rows[4]
	assert.Equal(t, models.SeatSelected, rowE[0].State)
	assert.Equal(t, models.SeatWomenOnly, rowE[1].State)
	assert.True(t, rowE[1].Clickable)
}

func TestValidatePassengerData(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.ToggleSeat("A4"))
	require.NoError(t, m.SetPassenger("A3", validPassenger("Sara")))
	require.NoError(t, m.SetPassenger("A4", validPassenger("Dawit")))

	res := m.ValidatePassengerData()
	assert.True(t, res.IsValid)
	require.Len(t, res.Passengers, 2)
	assert.Equal(t, "A3", res.Passengers[0].SeatNumber)

	cases := []models.PassengerRecord{
		{Name: "", Age: "30", Gender: "male", Phone: "0911223344"},
		{Name: "Dawit", Age: "0", Gender: "male", Phone: "0911223344"},
		{Name: "Dawit", Age: "121", Gender: "male", Phone: "0911223344"},
		{Name: "Dawit", Age: "30", Gender: "", Phone: "0911223344"},
		{Name: "Dawit", Age: "30", Gender: "male", Phone: "123"},
	}
	for _, p := range cases {
		require.NoError(t, m.SetPassenger("A4", p))
		res := m.ValidatePassengerData()
		assert.False(t, res.IsValid, "%+v", p)
		assert.Len(t, res.Passengers, 2)
		assert.NotEmpty(t, res.Violations)
	}
}

func TestPhaseTransitions(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Equal(t, PhaseIdle, m.Phase())

	require.NoError(t, m.ToggleSeat("A3"))
	assert.Equal(t, PhaseSeatsPartiallySelected, m.Phase())

	require.NoError(t, m.SetPassenger("A3", models.PassengerRecord{Name: "Sara"}))
	assert.Equal(t, PhaseReadyForPassengerEntry, m.Phase())

	require.NoError(t, m.SetPassenger("A3", validPassenger("Sara")))
	assert.Equal(t, PhaseValidatedReadyForPayment, m.Phase())
}

func TestProceedToPaymentNoWrites(t *testing.T) {
	m, scope := newTestManager(t)
	ctx := context.Background()

	_, err := m.ProceedToPayment(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSeats))

	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.SetPassenger("A3", models.PassengerRecord{Name: "Sara", Age: "30", Gender: "female", Phone: "123"}))
	_, err = m.ProceedToPayment(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	var draft models.BookingDraft
	err = scope.GetJSON(ctx, storage.Session, storage.KeyBookingData, &draft)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestProceedToPaymentRoundTrip(t *testing.T) {
	m, scope := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, scope.SetJSON(ctx, storage.Session, storage.KeySelectedBus, models.BusListing{
		ID: "bus-3", Company: "Selam Bus", BusType: "Business Class",
		DepartureLocation: "Addis Ababa", ArrivalLocation: "Hawassa",
		DepartureTime: "08:00", ArrivalTime: "12:30",
	}, 0))

	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.ToggleSeat("A4"))
	require.NoError(t, m.SetPassenger("A3", validPassenger("Sara")))
	require.NoError(t, m.SetPassenger("A4", validPassenger("Dawit")))

	written, err := m.ProceedToPayment(ctx)
	require.NoError(t, err)

	var read models.BookingDraft
	require.NoError(t, scope.GetJSON(ctx, storage.Session, storage.KeyBookingData, &read))
	assert.Equal(t, written, read)
	assert.Equal(t, []string{"A3", "A4"}, read.SelectedSeats)
	assert.Equal(t, int64(300), read.TotalPrice)
	assert.Equal(t, read.SeatPrice*int64(len(read.SelectedSeats)), read.TotalPrice)
	assert.Equal(t, "Sara", read.Passengers[0].Name)
	assert.Equal(t, "2025-03-14T09:30:00Z", read.BookingDate)
	require.NotNil(t, read.Route)
	assert.Equal(t, "Hawassa", read.Route.To)
	assert.Equal(t, "Selam Bus", read.Bus.Company)
}

func TestSwitchBusClassFiltersInvalidSeats(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.ToggleSeat("B2"))
	require.NoError(t, m.ToggleSeat("L4"))
	require.NoError(t, m.SetPassenger("B2", validPassenger("Sara")))

	require.NoError(t, m.SwitchBusClass(domain.ClassLuxury))

	v := m.View()
	assert.Equal(t, domain.ClassLuxury, v.BusType)
	assert.Equal(t, []string{"B2"}, v.SelectedSeats)
	assert.Equal(t, int64(350), v.TotalPrice)
	require.Len(t, v.Passengers, 1)
	assert.Equal(t, "Sara", v.Passengers[0].Name)

	err := m.SwitchBusClass("sleeper")
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, domain.ClassLuxury, m.View().BusType)
}

func TestSubscribeNotifiesOnMutation(t *testing.T) {
	m, _ := newTestManager(t)
	var got []View
	cancel := m.Subscribe(func(v View) { got = append(got, v) })

	require.NoError(t, m.ToggleSeat("A3"))
	require.NoError(t, m.ToggleSeat("A1"))
	m.ClearAllSeats()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"A3"}, got[0].SelectedSeats)
	assert.Empty(t, got[1].SelectedSeats)

	cancel()
	require.NoError(t, m.ToggleSeat("A4"))
	assert.Len(t, got, 2)
}

func TestSetPassengerRequiresSelectedSeat(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.SetPassenger("A3", validPassenger("Sara"))
	assert.True(t, domain.IsNotFound(err))
}
