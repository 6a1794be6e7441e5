// Package confirmation renders the booking confirmation page: summary,
// QR payload, PDF e-ticket and the simulated follow-up actions.
package confirmation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/notify"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

// Confirmation is the view model of the confirmation page.
type Confirmation struct {
	Reference     string                   `json:"reference"`
	TripDate      string                   `json:"tripDate"`
	Route         models.RouteInfo         `json:"route"`
	DepartureTime string                   `json:"departureTimeLabel"`
	ArrivalTime   string                   `json:"arrivalTimeLabel"`
	Duration      string                   `json:"duration"`
	Bus           models.BusInfo           `json:"bus"`
	Passengers    []models.PassengerRecord `json:"passengers"`
	Pricing       models.Pricing           `json:"pricing"`
	PaymentMethod string                   `json:"paymentMethod"`
	PaymentID     string                   `json:"paymentId"`
	Status        string                   `json:"status"`
	Timestamp     string                   `json:"timestamp"`
}

// QRPayload is the JSON encoded in the ticket QR code.
type QRPayload struct {
	Reference  string                   `json:"reference"`
	Route      *models.RouteInfo        `json:"route"`
	Passengers []models.PassengerRecord `json:"passengers"`
	Total      int64                    `json:"total"`
	Timestamp  string                   `json:"timestamp"`
}

type Service struct {
	Scope     storage.Scope
	Notifier  notify.Notifier
	Delay     time.Duration
	Clock     utils.Clock
	RequestID string

	// Loader overrides reading paymentData from the store.
	Loader func(ctx context.Context) (models.PaymentData, error)
}

func (s Service) load(ctx context.Context) (models.PaymentData, error) {
	if s.Loader != nil {
		return s.Loader(ctx)
	}
	var data models.PaymentData
	err := s.Scope.GetJSON(ctx, storage.Session, storage.KeyPaymentData, &data)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return data, domain.NotFoundError{Resource: "booking", Msg: "no confirmed booking found", Err: err}
	case err != nil:
		utils.LogEvent(s.RequestID, "confirmation", "load", err.Error())
		return data, domain.NotFoundError{Resource: "booking", Msg: "booking data is unreadable", Err: err}
	}
	return data, nil
}

// Booking loads paymentData and derives the page view model.
func (s Service) Booking(ctx context.Context) (Confirmation, error) {
	data, err := s.load(ctx)
	if err != nil {
		return Confirmation{}, err
	}
	return buildConfirmation(data), nil
}

func buildConfirmation(d models.PaymentData) Confirmation {
	var route models.RouteInfo
	if d.Route != nil {
		route = *d.Route
	}
	var bus models.BusInfo
	if d.Bus != nil {
		bus = *d.Bus
	}
	return Confirmation{
		Reference:     d.Reference,
		TripDate:      route.DepartureDate,
		Route:         route,
		DepartureTime: clock12(route.DepartureTime),
		ArrivalTime:   clock12(route.ArrivalTime),
		Duration:      tripDuration(route.DepartureTime, route.ArrivalTime),
		Bus:           bus,
		Passengers:    d.Passengers,
		Pricing:       d.Pricing,
		PaymentMethod: d.Method.Label(),
		PaymentID:     d.PaymentID,
		Status:        d.Status,
		Timestamp:     d.Timestamp,
	}
}

// QR returns the QR code text of the booking.
func (s Service) QR(ctx context.Context) ([]byte, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(QRPayload{
		Reference:  data.Reference,
		Route:      data.Route,
		Passengers: data.Passengers,
		Total:      data.Pricing.Total,
		Timestamp:  data.Timestamp,
	})
}

// EmailTicket simulates mailing the ticket. An empty address falls back to
// the first passenger's email.
func (s Service) EmailTicket(ctx context.Context, email string) (string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		email = firstPassenger(data, func(p models.PassengerRecord) string { return p.Email })
	}
	if !utils.IsEmail(email) {
		return "", domain.ValidationError{Field: "email", Msg: "a valid email address is required"}
	}
	msg := "Your ticket has been sent to your email address."
	if err := s.send(ctx, notify.Notification{Kind: notify.KindEmail, Reference: data.Reference, Recipient: email, Message: msg}); err != nil {
		return "", err
	}
	return msg, nil
}

// SendSMS simulates texting the ticket details. An empty phone falls back
// to the first passenger's phone.
func (s Service) SendSMS(ctx context.Context, phone string) (string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = firstPassenger(data, func(p models.PassengerRecord) string { return p.Phone })
	}
	if !utils.IsEthiopianPhone(phone) {
		return "", domain.ValidationError{Field: "phone", Msg: "a valid phone number is required"}
	}
	msg := "Your ticket details have been sent to your phone number."
	if err := s.send(ctx, notify.Notification{Kind: notify.KindSMS, Reference: data.Reference, Recipient: utils.StripPhone(phone), Message: msg}); err != nil {
		return "", err
	}
	return msg, nil
}

// RequestCancellation records a cancellation request on the stored
// booking. A second request is a conflict.
func (s Service) RequestCancellation(ctx context.Context) (string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if data.Status == models.PaymentCancelRequested {
		return "", domain.ConflictError{Resource: "booking", Msg: "Cancellation Requested"}
	}
	msg := "Your booking cancellation request has been submitted. You will receive a confirmation email within 24 hours."
	if err := s.send(ctx, notify.Notification{Kind: notify.KindCancellation, Reference: data.Reference, Message: msg}); err != nil {
		return "", err
	}

	data.Status = models.PaymentCancelRequested
	if err := s.Scope.SetJSON(ctx, storage.Session, storage.KeyPaymentData, data, 0); err != nil {
		return "", domain.InternalError{Msg: "could not save cancellation request", Err: err}
	}
	return msg, nil
}

func (s Service) send(ctx context.Context, n notify.Notification) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	n.Timestamp = s.Clock.Now().UTC().Format(time.RFC3339)
	notifier := s.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	if err := notifier.Notify(ctx, n); err != nil {
		utils.LogEvent(s.RequestID, "confirmation", string(n.Kind), "notify failed: "+err.Error())
		return domain.InternalError{Msg: fmt.Sprintf("could not send %s, please try again", n.Kind), Err: err}
	}
	utils.LogEventf(s.RequestID, "confirmation", string(n.Kind), "reference=%s", n.Reference)
	return nil
}

func (s Service) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstPassenger(d models.PaymentData, field func(models.PassengerRecord) string) string {
	for _, p := range d.Passengers {
		if v := strings.TrimSpace(field(p)); v != "" {
			return v
		}
	}
	return ""
}

// clock12 renders "14:05" as "2:05 PM".
func clock12(hm string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(hm))
	if err != nil {
		return hm
	}
	return t.Format("3:04 PM")
}

// tripDuration handles arrivals past midnight.
func tripDuration(dep, arr string) string {
	d, err1 := time.Parse("15:04", strings.TrimSpace(dep))
	a, err2 := time.Parse("15:04", strings.TrimSpace(arr))
	if err1 != nil || err2 != nil {
		return ""
	}
	mins := int(a.Sub(d).Minutes())
	if mins < 0 {
		mins += 24 * 60
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}
