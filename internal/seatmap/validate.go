package seatmap

import (
	"strconv"
	"strings"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// Validation is the outcome of checking every passenger form. Passengers
// holds one record per selected seat whether or not it is valid.
type Validation struct {
	IsValid    bool                     `json:"isValid"`
	Passengers []models.PassengerRecord `json:"passengers"`
	Violations []domain.ValidationError `json:"violations,omitempty"`
}

func validatePassenger(p models.PassengerRecord) []domain.ValidationError {
	var out []domain.ValidationError
	add := func(field, msg string) {
		out = append(out, domain.ValidationError{Field: p.SeatNumber + "." + field, Msg: msg})
	}

	if strings.TrimSpace(p.Name) == "" {
		add("name", "full name is required for seat "+p.SeatNumber)
	}

	age := strings.TrimSpace(p.Age)
	if age == "" {
		add("age", "age is required for seat "+p.SeatNumber)
	} else if n, err := strconv.Atoi(age); err != nil || n < 1 || n > 120 {
		add("age", "invalid age for passenger in seat "+p.SeatNumber)
	}

	switch p.Gender {
	case "":
		add("gender", "gender is required for seat "+p.SeatNumber)
	case "male", "female":
	default:
		add("gender", "invalid gender for passenger in seat "+p.SeatNumber)
	}

	if strings.TrimSpace(p.Phone) == "" {
		add("phone", "phone number is required for seat "+p.SeatNumber)
	} else if !utils.IsEthiopianPhone(p.Phone) {
		add("phone", "invalid phone number for passenger in seat "+p.SeatNumber)
	}
	return out
}
