// Package search implements the home page search form and the results
// page: synthetic listings, filters, sorting and incremental reveal.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
	"selambus/internal/utils"
)

const (
	PageSize        = 5
	DefaultPriceMax = 500
)

type SortKey string

const (
	SortDeparture SortKey = "departure"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortDuration  SortKey = "duration"
)

// Filters are AND-ed across categories. Times, bus types and companies
// match when any entry matches; every amenity must be present.
type Filters struct {
	Times     []string `json:"time"`
	BusTypes  []string `json:"busType"`
	Companies []string `json:"company"`
	PriceMax  int64    `json:"priceMax"`
	Amenities []string `json:"amenities"`
}

func DefaultFilters() Filters {
	return Filters{PriceMax: DefaultPriceMax}
}

// Match reports whether b passes every active filter.
func (f Filters) Match(b models.BusListing) bool {
	if len(f.Times) > 0 && !containsFold(f.Times, b.DeparturePeriod) {
		return false
	}
	if b.Price > f.PriceMax {
		return false
	}
	if len(f.Companies) > 0 && !matchAny(f.Companies, func(c string) bool { return companyMatches(b.Company, c) }) {
		return false
	}
	if len(f.BusTypes) > 0 && !matchAny(f.BusTypes, func(t string) bool { return busTypeMatches(b.BusType, t) }) {
		return false
	}
	for _, a := range f.Amenities {
		if !hasAmenity(b.Amenities, a) {
			return false
		}
	}
	return true
}

func matchAny(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if fn(v) {
			return true
		}
	}
	return false
}

func containsFold(vals []string, s string) bool {
	return matchAny(vals, func(v string) bool { return strings.EqualFold(v, s) })
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// companyMatches accepts display names ("Golden Bus") and slugs ("golden-bus").
func companyMatches(company, filter string) bool {
	f := slug(filter)
	return f != "" && strings.Contains(slug(company), f)
}

func busTypeMatches(busType, class string) bool {
	t := strings.ToLower(busType)
	switch domain.BusClass(strings.ToLower(class)) {
	case domain.ClassEconomy:
		return strings.Contains(t, "standard") || strings.Contains(t, "economy")
	case domain.ClassBusiness:
		return strings.Contains(t, "business")
	case domain.ClassLuxury:
		return strings.Contains(t, "luxury") || strings.Contains(t, "sleeper")
	}
	return false
}

func hasAmenity(list []models.Amenity, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, a := range list {
		name := strings.ToLower(a.Name)
		switch want {
		case "ac":
			if name == "ac" || strings.Contains(name, "air") {
				return true
			}
		case "charging":
			if strings.Contains(name, "charging") {
				return true
			}
		default:
			if name == want {
				return true
			}
		}
	}
	return false
}

// Engine holds the results page state of one client.
type Engine struct {
	mu       sync.Mutex
	all      []models.BusListing
	filtered []models.BusListing
	filters  Filters
	sortKey  SortKey
	page     int
}

func NewEngine(listings []models.BusListing) *Engine {
	e := &Engine{
		all:     append([]models.BusListing(nil), listings...),
		filters: DefaultFilters(),
		sortKey: SortDeparture,
		page:    1,
	}
	e.recomputeLocked()
	return e
}

// Load asks src for listings matching c and resets filters and paging.
func Load(ctx context.Context, src ListingSource, c models.SearchCriteria) (*Engine, error) {
	listings, err := src.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return NewEngine(listings), nil
}

func (e *Engine) recomputeLocked() {
	out := make([]models.BusListing, 0, len(e.all))
	for _, b := range e.all {
		if e.filters.Match(b) {
			out = append(out, b)
		}
	}
	e.filtered = out
	sortListings(e.filtered, e.sortKey)
	e.page = 1
}

// ApplyFilters replaces the filter set and resets paging to the first page.
// A non-positive PriceMax falls back to the default.
func (e *Engine) ApplyFilters(f Filters) {
	if f.PriceMax <= 0 {
		f.PriceMax = DefaultPriceMax
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = f
	e.recomputeLocked()
}

// ClearFilters restores the default filters.
func (e *Engine) ClearFilters() {
	e.ApplyFilters(DefaultFilters())
}

// Sort orders the filtered listings by key. Unknown keys leave the order
// unchanged. Paging is kept.
func (e *Engine) Sort(key SortKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !sortListings(e.filtered, key) {
		return
	}
	e.sortKey = key
}

func sortListings(list []models.BusListing, key SortKey) bool {
	var less func(a, b models.BusListing) bool
	switch key {
	case SortDeparture:
		less = func(a, b models.BusListing) bool { return a.DepartureTime < b.DepartureTime }
	case SortPriceLow:
		less = func(a, b models.BusListing) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b models.BusListing) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b models.BusListing) bool { return a.Rating > b.Rating }
	case SortDuration:
		less = func(a, b models.BusListing) bool { return a.Duration < b.Duration }
	default:
		return false
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
	return true
}

// Visible returns the first page×PageSize filtered listings.
func (e *Engine) Visible() []models.BusListing {
	e.mu.Lock()
	defer e.mu.Unlock()
	end := e.page * PageSize
	if end > len(e.filtered) {
		end = len(e.filtered)
	}
	return append([]models.BusListing(nil), e.filtered[:end]...)
}

// LoadMore reveals the next page and returns only the appended listings.
func (e *Engine) LoadMore() []models.BusListing {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := e.page * PageSize
	if start >= len(e.filtered) {
		return nil
	}
	e.page++
	end := e.page * PageSize
	if end > len(e.filtered) {
		end = len(e.filtered)
	}
	return append([]models.BusListing(nil), e.filtered[start:end]...)
}

func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page*PageSize < len(e.filtered)
}

// Count is the number of listings passing the filters.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.filtered)
}

func (e *Engine) Filters() Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters
}

func (e *Engine) SortKey() SortKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortKey
}

// SelectBus stores the filtered listing with id as selectedBus.
func (e *Engine) SelectBus(ctx context.Context, scope storage.Scope, requestID, id string) (models.BusListing, error) {
	e.mu.Lock()
	var (
		found models.BusListing
		ok    bool
	)
	for _, b := range e.filtered {
		if b.ID == id {
			found, ok = b, true
			break
		}
	}
	e.mu.Unlock()

	if !ok {
		return found, domain.NotFoundError{Resource: "bus", Msg: "bus " + id + " not found in results"}
	}
	if err := scope.SetJSON(ctx, storage.Session, storage.KeySelectedBus, found, 0); err != nil {
		return found, domain.InternalError{Msg: "could not save selected bus", Err: err}
	}
	utils.LogEventf(requestID, "search", "select_bus", "id=%s company=%s departure=%s", found.ID, found.Company, found.DepartureTime)
	return found, nil
}
