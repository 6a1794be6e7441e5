package search

import (
	"context"
	"strings"
	"time"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

// ValidateCriteria reports the first problem of a search form submission.
// Dates are YYYY-MM-DD and compared against the calendar day of today.
func ValidateCriteria(c models.SearchCriteria, today time.Time) error {
	from := strings.TrimSpace(c.From)
	to := strings.TrimSpace(c.To)
	if from == "" || to == "" {
		return domain.ValidationError{Field: "from", Msg: "Please select both departure and destination cities"}
	}
	if from == to {
		return domain.ValidationError{Field: "to", Msg: "Departure and destination cities cannot be the same"}
	}
	if strings.TrimSpace(c.DepartureDate) == "" {
		return domain.ValidationError{Field: "departureDate", Msg: "Please select a departure date"}
	}
	dep, err := utils.ParseDate(c.DepartureDate)
	if err != nil {
		return domain.ValidationError{Field: "departureDate", Msg: "Departure date must be YYYY-MM-DD", Err: err}
	}
	if dep.Before(utils.StartOfDay(today)) {
		return domain.ValidationError{Field: "departureDate", Msg: "Departure date cannot be in the past"}
	}

	if !c.IsRoundTrip {
		return nil
	}
	if strings.TrimSpace(c.ReturnDate) == "" {
		return domain.ValidationError{Field: "returnDate", Msg: "Please select a return date for round trip"}
	}
	ret, err := utils.ParseDate(c.ReturnDate)
	if err != nil {
		return domain.ValidationError{Field: "returnDate", Msg: "Return date must be YYYY-MM-DD", Err: err}
	}
	if !ret.After(dep) {
		return domain.ValidationError{Field: "returnDate", Msg: "Return date must be after departure date"}
	}
	return nil
}

// Form is the home page search box of one client.
type Form struct {
	Scope     storage.Scope
	Clock     utils.Clock
	RequestID string
}

// Submit validates c and stores it as searchData.
func (f Form) Submit(ctx context.Context, c models.SearchCriteria) (models.SearchCriteria, error) {
	c.From = strings.TrimSpace(c.From)
	c.To = strings.TrimSpace(c.To)
	if !c.IsRoundTrip {
		c.ReturnDate = ""
	}
	if err := ValidateCriteria(c, f.Clock.Now()); err != nil {
		return c, err
	}
	if err := f.Scope.SetJSON(ctx, storage.Session, storage.KeySearchData, c, 0); err != nil {
		return c, domain.InternalError{Msg: "could not save search", Err: err}
	}
	utils.LogEventf(f.RequestID, "search", "submit", "%s -> %s on %s round_trip=%t", c.From, c.To, c.DepartureDate, c.IsRoundTrip)
	return c, nil
}

// Criteria loads the last submitted search. A missing search is not an
// error; the results page then shows the default route.
func (f Form) Criteria(ctx context.Context) (models.SearchCriteria, bool) {
	var c models.SearchCriteria
	if err := f.Scope.GetJSON(ctx, storage.Session, storage.KeySearchData, &c); err != nil {
		return c, false
	}
	return c, true
}
