package admin

import (
	"fmt"
	"time"

	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// DataSource supplies the back-office listings.
type DataSource interface {
	Bookings() []models.AdminBooking
	Buses() []models.Bus
	Users() []models.AdminUser
	Routes() []models.Route
}

type Rand interface {
	Intn(n int) int
	Float64() float64
}

var (
	fixtureStatuses  = []string{models.BookingPending, models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted}
	fixtureCompanies = []string{"Selam Bus", "Sky Bus", "Golden Bus", "Ethio Bus"}
	fixtureBusTypes  = []string{"Economy", "Business", "Luxury"}
	fixtureAmenities = []string{"WiFi", "AC", "Toilet", "Charging Port", "Snack"}
	fixtureRoutes    = []models.Route{
		{From: "Addis Ababa", To: "Adama", Distance: 100, Duration: "2h 30m", Price: 200},
		{From: "Addis Ababa", To: "Hawassa", Distance: 275, Duration: "5h 30m", Price: 350},
		{From: "Addis Ababa", To: "Bahir Dar", Distance: 565, Duration: "10h 30m", Price: 450},
		{From: "Addis Ababa", To: "Gondar", Distance: 730, Duration: "13h 30m", Price: 500},
		{From: "Addis Ababa", To: "Mekele", Distance: 780, Duration: "14h 30m", Price: 550},
		{From: "Addis Ababa", To: "Dire Dawa", Distance: 515, Duration: "9h 30m", Price: 400},
	}
)

// Fixture is generated sample data, fixed once built.
type Fixture struct {
	bookings []models.AdminBooking
	buses    []models.Bus
	users    []models.AdminUser
	routes   []models.Route
}

// NewFixture draws 50 bookings, 20 buses and 30 users dated back from now.
func NewFixture(r Rand, now time.Time) *Fixture {
	return &Fixture{
		bookings: fixtureBookings(r, now),
		buses:    fixtureBuses(r),
		users:    fixtureUsers(r, now),
		routes:   append([]models.Route(nil), fixtureRoutes...),
	}
}

func (f *Fixture) Bookings() []models.AdminBooking { return f.bookings }
func (f *Fixture) Buses() []models.Bus             { return f.buses }
func (f *Fixture) Users() []models.AdminUser       { return f.users }
func (f *Fixture) Routes() []models.Route          { return f.routes }

func fixturePhone(r Rand) string {
	return fmt.Sprintf("+2519%08d", r.Intn(10000000))
}

func fixtureClock(r Rand) string {
	return fmt.Sprintf("%02d:%02d", r.Intn(24), r.Intn(60))
}

func fixtureBookings(r Rand, now time.Time) []models.AdminBooking {
	out := make([]models.AdminBooking, 50)
	month := int64(30 * 24 * time.Hour / time.Millisecond)
	for i := range out {
		n := i + 1
		route := fixtureRoutes[r.Intn(len(fixtureRoutes))]
		status := fixtureStatuses[r.Intn(len(fixtureStatuses))]
		seats := r.Intn(4) + 1
		base := 200 + r.Intn(300)
		date := now.Add(-time.Duration(r.Float64()*float64(month)) * time.Millisecond)
		created := now.Add(-time.Duration(r.Float64()*float64(month)) * time.Millisecond)

		out[i] = models.AdminBooking{
			ID: fmt.Sprintf("SLM-%06d", n),
			Customer: models.Customer{
				Name:  fmt.Sprintf("Customer %d", n),
				Email: fmt.Sprintf("customer%d@email.com", n),
				Phone: fixturePhone(r),
			},
			Route:     models.RouteRef{From: route.From, To: route.To},
			Date:      utils.FormatDate(date),
			Time:      fixtureClock(r),
			Seats:     seats,
			Amount:    int64(seats * base),
			Status:    status,
			CreatedAt: created.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func fixtureBuses(r Rand) []models.Bus {
	out := make([]models.Bus, 20)
	for i := range out {
		n := i + 1
		company := fixtureCompanies[r.Intn(len(fixtureCompanies))]
		kind := fixtureBusTypes[r.Intn(len(fixtureBusTypes))]
		amenities := []string{}
		for _, a := range fixtureAmenities {
			if r.Float64() > 0.5 {
				amenities = append(amenities, a)
			}
		}
		status := "maintenance"
		if r.Float64() > 0.2 {
			status = "active"
		}
		capacity, price := 20, int64(500)
		switch kind {
		case "Economy":
			capacity, price = 45, 200
		case "Business":
			capacity, price = 30, 350
		}

		out[i] = models.Bus{
			ID:            fmt.Sprintf("BUS-%03d", n),
			Company:       company,
			Type:          kind,
			Model:         fmt.Sprintf("%s Model %d", company, n),
			Capacity:      capacity,
			Amenities:     amenities,
			Status:        status,
			Route:         models.RouteRef{From: "Addis Ababa", To: fixtureRoutes[r.Intn(len(fixtureRoutes))].To},
			DepartureTime: fixtureClock(r),
			Price:         price,
		}
	}
	return out
}

func fixtureUsers(r Rand, now time.Time) []models.AdminUser {
	out := make([]models.AdminUser, 30)
	for i := range out {
		n := i + 1
		kind := "customer"
		if r.Intn(2) == 1 {
			kind = "admin"
		}
		status := "active"
		if r.Intn(2) == 1 {
			status = "inactive"
		}
		joined := now.AddDate(0, 0, -r.Intn(365))

		out[i] = models.AdminUser{
			ID:       fmt.Sprintf("USER-%04d", n),
			Name:     fmt.Sprintf("User %d", n),
			Email:    fmt.Sprintf("user%d@email.com", n),
			Phone:    fixturePhone(r),
			Type:     kind,
			Status:   status,
			JoinDate: utils.FormatDate(joined),
			Bookings: r.Intn(10),
			Avatar:   fmt.Sprintf("https://ui-avatars.com/api/?name=User+%d&background=3b82f6&color=fff&size=64", n),
		}
	}
	return out
}
