package models

type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatSelected  SeatState = "selected"
	SeatBooked    SeatState = "booked"
	SeatWomenOnly SeatState = "womenOnly"
)

// SeatCell is one cell of a rendered layout row. Aisle cells have no seat id.
type SeatCell struct {
	SeatID    string    `json:"seatId,omitempty"`
	Aisle     bool      `json:"aisle,omitempty"`
	State     SeatState `json:"state,omitempty"`
	Clickable bool      `json:"clickable"`
	Tooltip   string    `json:"tooltip,omitempty"`
}
