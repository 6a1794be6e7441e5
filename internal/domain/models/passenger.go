package models

// PassengerRecord is the per-seat passenger form. Age stays a string
// because an unfilled form field is distinct from age zero.
type PassengerRecord struct {
	SeatNumber          string `json:"seatNumber"`
	Name                string `json:"name"`
	Age                 string `json:"age"`
	Gender              string `json:"gender"`
	Phone               string `json:"phone"`
	Email               string `json:"email,omitempty"`
	IDNumber            string `json:"idNumber,omitempty"`
	SpecialRequirements bool   `json:"specialRequirements"`
	Requirements        string `json:"requirements,omitempty"`
}

// Touched reports whether any field of the form has been filled in.
func (p PassengerRecord) Touched() bool {
	return p.Name != "" || p.Age != "" || p.Gender != "" || p.Phone != "" ||
		p.Email != "" || p.IDNumber != "" || p.SpecialRequirements || p.Requirements != ""
}
