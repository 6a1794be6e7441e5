package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// ListingSource produces the bus listings for a search.
type ListingSource interface {
	List(ctx context.Context, c models.SearchCriteria) ([]models.BusListing, error)
}

type company struct {
	Name, Logo, Color string
}

var companies = []company{
	{"Selam Bus", "SB", "2563eb"},
	{"Golden Bus", "GB", "f59e0b"},
	{"Sky Bus", "SK", "10b981"},
	{"Luxury Bus Lines", "LB", "8b5cf6"},
	{"Ethio Bus", "EB", "f59e0b"},
	{"Kibru Bus", "KB", "ef4444"},
}

var busTypes = []string{"Higer Bus", "Business Class", "Standard Coach", "Luxury Sleeper", "Economy Coach"}

var amenities = []models.Amenity{
	{Icon: "fas fa-wifi", Name: "WiFi"},
	{Icon: "fas fa-snowflake", Name: "AC"},
	{Icon: "fas fa-restroom", Name: "Toilet"},
	{Icon: "fas fa-plug", Name: "Charging"},
	{Icon: "fas fa-tv", Name: "TV"},
	{Icon: "fas fa-coffee", Name: "Snack"},
	{Icon: "fas fa-bed", Name: "Sleeper"},
	{Icon: "fas fa-utensils", Name: "Meal"},
}

var departures = []struct{ Time, Period string }{
	{"06:00", "morning"}, {"08:00", "morning"}, {"10:30", "morning"},
	{"12:00", "afternoon"}, {"14:00", "afternoon"}, {"16:30", "afternoon"},
	{"18:00", "evening"}, {"20:00", "evening"},
	{"22:00", "night"}, {"23:30", "night"},
}

const (
	DefaultFrom     = "Addis Ababa"
	DefaultTo       = "Hawassa"
	defaultDistance = 275
	listingCount    = 50
)

// Generator is the synthetic ListingSource. Rand is shared across calls
// and guarded by a mutex.
type Generator struct {
	Count int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{Count: listingCount, rnd: rnd}
}

func (g *Generator) List(ctx context.Context, c models.SearchCriteria) ([]models.BusListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, to := c.From, c.To
	if from == "" || to == "" {
		from, to = DefaultFrom, DefaultTo
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]models.BusListing, 0, g.Count)
	for i := 0; i < g.Count; i++ {
		co := companies[g.rnd.Intn(len(companies))]
		dep := departures[g.rnd.Intn(len(departures))]
		busType := busTypes[g.rnd.Intn(len(busTypes))]
		rating := math.Round((3+g.rnd.Float64()*2)*10) / 10
		price := int64(120 + g.rnd.Intn(200))
		seats := 10 + g.rnd.Intn(30)
		duration := 3.5 + g.rnd.Float64()*2

		shuffled := append([]models.Amenity(nil), amenities...)
		g.rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		n := 3 + g.rnd.Intn(4)

		out = append(out, models.BusListing{
			ID:                fmt.Sprintf("bus-%d", i+1),
			Company:           co.Name,
			Logo:              co.Logo,
			Color:             co.Color,
			BusType:           busType,
			DepartureTime:     dep.Time,
			DeparturePeriod:   dep.Period,
			ArrivalTime:       utils.AddClock(dep.Time, duration),
			Duration:          duration,
			Rating:            rating,
			Price:             price,
			SeatsAvailable:    seats,
			Amenities:         shuffled[:n],
			DepartureLocation: from,
			DepartureTerminal: "Autobus Tera",
			ArrivalLocation:   to,
			ArrivalTerminal:   "Main Terminal",
			Distance:          defaultDistance,
		})
	}
	return out, nil
}

// StaticSource serves a fixed listing set, for tests and demos.
type StaticSource []models.BusListing

func (s StaticSource) List(_ context.Context, _ models.SearchCriteria) ([]models.BusListing, error) {
	return append([]models.BusListing(nil), s...), nil
}
