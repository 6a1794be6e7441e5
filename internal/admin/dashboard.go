// Package admin implements the back-office dashboard: statistics, filtered
// and paginated listings, global search and CSV export.
package admin

import (
	"sort"
	"strings"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// Page sizes of the three listings.
const (
	BookingsPerPage = 10
	BusesPerPage    = 8
	UsersPerPage    = 10
)

type Service struct {
	Source    DataSource
	Clock     utils.Clock
	RequestID string
}

type Stats struct {
	TotalRevenue    int64  `json:"totalRevenue"`
	RevenueLabel    string `json:"totalRevenueLabel"`
	TotalBookings   int    `json:"totalBookings"`
	ActiveUsers     int    `json:"activeUsers"`
	ActiveBuses     int    `json:"activeBuses"`
	PendingBookings int    `json:"pendingBookings"`
}

type RouteStat struct {
	Route    string `json:"route"`
	Bookings int    `json:"bookings"`
	Revenue  int64  `json:"revenue"`
}

type RevenuePoint struct {
	Date   string `json:"date"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type Dashboard struct {
	Stats     Stats                 `json:"stats"`
	Recent    []models.AdminBooking `json:"recentActivity"`
	TopRoutes []RouteStat           `json:"topRoutes"`
	Revenue   []RevenuePoint        `json:"revenue"`
}

// earning reports whether a booking counts toward revenue.
func earning(b models.AdminBooking) bool {
	return b.Status == models.BookingConfirmed || b.Status == models.BookingCompleted
}

func (s Service) Dashboard() Dashboard {
	return Dashboard{
		Stats:     s.Stats(),
		Recent:    s.RecentActivity(5),
		TopRoutes: s.TopRoutes(5),
		Revenue:   s.Revenue(7),
	}
}

func (s Service) Stats() Stats {
	var st Stats
	bookings := s.Source.Bookings()
	st.TotalBookings = len(bookings)
	for _, b := range bookings {
		if earning(b) {
			st.TotalRevenue += b.Amount
		}
		if b.Status == models.BookingPending {
			st.PendingBookings++
		}
	}
	for _, u := range s.Source.Users() {
		if u.Status == "active" {
			st.ActiveUsers++
		}
	}
	for _, b := range s.Source.Buses() {
		if b.Status == "active" {
			st.ActiveBuses++
		}
	}
	st.RevenueLabel = utils.FormatBirr(st.TotalRevenue)
	return st
}

// RecentActivity returns the n most recently created bookings.
func (s Service) RecentActivity(n int) []models.AdminBooking {
	out := append([]models.AdminBooking(nil), s.Source.Bookings()...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopRoutes ranks routes by booking count; ties keep first-seen order.
func (s Service) TopRoutes(n int) []RouteStat {
	var out []RouteStat
	idx := map[string]int{}
	for _, b := range s.Source.Bookings() {
		key := b.Route.From + " - " + b.Route.To
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, RouteStat{Route: key})
		}
		out[i].Bookings++
		out[i].Revenue += b.Amount
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bookings > out[j].Bookings })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Revenue sums earning bookings per travel date over the last days days,
// oldest first.
func (s Service) Revenue(days int) []RevenuePoint {
	today := utils.StartOfDay(s.Clock.Now())
	out := make([]RevenuePoint, days)
	pos := map[string]int{}
	for i := range out {
		d := today.AddDate(0, 0, i-days+1)
		key := utils.FormatDate(d)
		out[i] = RevenuePoint{Date: key, Label: d.Format("Jan 2")}
		pos[key] = i
	}
	for _, b := range s.Source.Bookings() {
		if i, ok := pos[b.Date]; ok && earning(b) {
			out[i].Amount += b.Amount
		}
	}
	return out
}

// Page is one page of a listing plus the paging totals.
type Page[T any] struct {
	Items      []T               `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

func paginate[T any](all []T, page, size int) Page[T] {
	p := domain.NewPagination(page, size, len(all))
	start, end := p.Window()
	items := make([]T, end-start)
	copy(items, all[start:end])
	return Page[T]{Items: items, Pagination: p}
}

type BookingFilter struct {
	Status string            `form:"status"`
	Window domain.DateWindow `form:"window"`
	Date   string            `form:"date"`
	Page   int               `form:"page"`
}

type BusFilter struct {
	Company string `form:"company"`
	Type    string `form:"type"`
	Page    int    `form:"page"`
}

type UserFilter struct {
	Type   string `form:"type"`
	Status string `form:"status"`
	Page   int    `form:"page"`
}

func (s Service) Bookings(f BookingFilter) (Page[models.AdminBooking], error) {
	if !f.Window.Valid() {
		return Page[models.AdminBooking]{}, domain.ValidationError{Field: "window", Msg: "window must be today, week or month"}
	}
	if f.Date != "" {
		if _, err := utils.ParseDate(f.Date); err != nil {
			return Page[models.AdminBooking]{}, domain.ValidationError{Field: "date", Msg: "date must be YYYY-MM-DD", Err: err}
		}
	}
	now := s.Clock.Now()
	var out []models.AdminBooking
	for _, b := range s.Source.Bookings() {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if !f.Window.Contains(b.Date, now) {
			continue
		}
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		out = append(out, b)
	}
	return paginate(out, f.Page, BookingsPerPage), nil
}

func (s Service) Buses(f BusFilter) Page[models.Bus] {
	company := strings.ToLower(strings.TrimSpace(f.Company))
	kind := strings.ToLower(strings.TrimSpace(f.Type))
	var out []models.Bus
	for _, b := range s.Source.Buses() {
		if company != "" && !strings.Contains(strings.ToLower(b.Company), company) {
			continue
		}
		if kind != "" && strings.ToLower(b.Type) != kind {
			continue
		}
		out = append(out, b)
	}
	return paginate(out, f.Page, BusesPerPage)
}

func (s Service) Users(f UserFilter) Page[models.AdminUser] {
	var out []models.AdminUser
	for _, u := range s.Source.Users() {
		if f.Type != "" && u.Type != f.Type {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, u)
	}
	return paginate(out, f.Page, UsersPerPage)
}

func (s Service) Booking(id string) (models.AdminBooking, error) {
	for _, b := range s.Source.Bookings() {
		if b.ID == id {
			return b, nil
		}
	}
	return models.AdminBooking{}, domain.NotFoundError{Resource: "booking"}
}

func (s Service) Bus(id string) (models.Bus, error) {
	for _, b := range s.Source.Buses() {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Bus{}, domain.NotFoundError{Resource: "bus"}
}

func (s Service) User(id string) (models.AdminUser, error) {
	for _, u := range s.Source.Users() {
		if u.ID == id {
			return u, nil
		}
	}
	return models.AdminUser{}, domain.NotFoundError{Resource: "user"}
}

type SearchResults struct {
	Bookings []models.AdminBooking `json:"bookings"`
	Buses    []models.Bus          `json:"buses"`
	Users    []models.AdminUser    `json:"users"`
}

// Search matches ids, names, emails and route cities case-insensitively.
// Phone numbers match as typed.
func (s Service) Search(query string) SearchResults {
	res := SearchResults{
		Bookings: []models.AdminBooking{},
		Buses:    []models.Bus{},
		Users:    []models.AdminUser{},
	}
	raw := strings.TrimSpace(query)
	if raw == "" {
		return res
	}
	q := strings.ToLower(raw)
	has := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	for _, b := range s.Source.Bookings() {
		if has(b.ID, b.Customer.Name, b.Customer.Email, b.Route.From, b.Route.To) || strings.Contains(b.Customer.Phone, raw) {
			res.Bookings = append(res.Bookings, b)
		}
	}
	for _, b := range s.Source.Buses() {
		if has(b.ID, b.Company, b.Model, b.Route.From, b.Route.To) {
			res.Buses = append(res.Buses, b)
		}
	}
	for _, u := range s.Source.Users() {
		if has(u.ID, u.Name, u.Email) || strings.Contains(u.Phone, raw) {
			res.Users = append(res.Users, u)
		}
	}
	utils.LogEventf(s.RequestID, "admin", "search", "q=%q bookings=%d buses=%d users=%d",
		raw, len(res.Bookings), len(res.Buses), len(res.Users))
	return res
}
