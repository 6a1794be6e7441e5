package models

import (
	"math"

	"selambus/internal/domain"
)

const (
	TaxRate        = 0.15
	ConvenienceFee = 10
	CardFeeRate    = 0.025
)

// RouteInfo is the trip block copied from the selected listing.
type RouteInfo struct {
	From              string `json:"from"`
	To                string `json:"to"`
	DepartureDate     string `json:"departureDate,omitempty"`
	DepartureTime     string `json:"departureTime,omitempty"`
	ArrivalTime       string `json:"arrivalTime,omitempty"`
	DepartureTerminal string `json:"departureTerminal,omitempty"`
	ArrivalTerminal   string `json:"arrivalTerminal,omitempty"`
}

type BusInfo struct {
	Company string `json:"company"`
	Type    string `json:"type"`
	Logo    string `json:"logo,omitempty"`
	Color   string `json:"color,omitempty"`
}

// BookingDraft is written once by seat selection and read-only afterwards.
type BookingDraft struct {
	BusType       domain.BusClass   `json:"busType"`
	SelectedSeats []string          `json:"selectedSeats"`
	Passengers    []PassengerRecord `json:"passengers"`
	TotalPrice    int64             `json:"totalPrice"`
	SeatPrice     int64             `json:"seatPrices"`
	BookingDate   string            `json:"bookingDate"`
	Route         *RouteInfo        `json:"route,omitempty"`
	Bus           *BusInfo          `json:"bus,omitempty"`
}

type Pricing struct {
	BaseFare       int64 `json:"baseFare"`
	Passengers     int   `json:"passengers"`
	Subtotal       int64 `json:"subtotal"`
	Tax            int64 `json:"tax"`
	ConvenienceFee int64 `json:"convenienceFee"`
	Total          int64 `json:"total"`
}

// Pricing derives the fare breakdown shown on the payment and
// confirmation pages.
func (d BookingDraft) Pricing() Pricing {
	n := len(d.SelectedSeats)
	subtotal := d.SeatPrice * int64(n)
	tax := int64(math.Round(float64(subtotal) * TaxRate))
	var fee int64
	if n > 0 {
		fee = ConvenienceFee
	}
	return Pricing{
		BaseFare:       d.SeatPrice,
		Passengers:     n,
		Subtotal:       subtotal,
		Tax:            tax,
		ConvenienceFee: fee,
		Total:          subtotal + tax + fee,
	}
}

// CardFee is the surcharge added on top of total for card payments.
func CardFee(total int64) int64 {
	return int64(math.Round(float64(total) * CardFeeRate))
}
