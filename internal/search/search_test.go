package search

import (
	"context"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/storage"
)

func TestSuggest(t *testing.T) {
	assert.Nil(t, Suggest(""))
	assert.Equal(t, []string{"Sodo", "Wolaita Sodo"}, Suggest("sodo"))
	assert.Equal(t, []string{"Addis Ababa", "Adama"}, Suggest("AD"))
	assert.Empty(t, Suggest("nairobi"))
}

func TestValidateCriteria(t *testing.T) {
	today := time.Date(2025, 3, 14, 15, 0, 0, 0, time.Local)
	ok := models.SearchCriteria{From: "Addis Ababa", To: "Hawassa", DepartureDate: "2025-03-14"}
	require.NoError(t, ValidateCriteria(ok, today))

	cases := map[string]models.SearchCriteria{
		"from": {To: "Hawassa", DepartureDate: "2025-03-20"},
		"to":   {From: "Adama", To: "Adama", DepartureDate: "2025-03-20"},
		"departureDate": {From: "Adama", To: "Hawassa", DepartureDate: "2025-03-13"},
		"returnDate": {From: "Adama", To: "Hawassa", DepartureDate: "2025-03-20",
			IsRoundTrip: true, ReturnDate: "2025-03-20"},
	}
	for field, c := range cases {
		err := ValidateCriteria(c, today)
		var ve domain.ValidationError
		require.ErrorAs(t, err, &ve, field)
		assert.Equal(t, field, ve.Field)
	}

	missingReturn := models.SearchCriteria{From: "Adama", To: "Hawassa", DepartureDate: "2025-03-20", IsRoundTrip: true}
	assert.True(t, domain.IsValidation(ValidateCriteria(missingReturn, today)))
}

func TestFormSubmitStoresSearchData(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	f := Form{Scope: scope, Clock: func() time.Time { return time.Date(2025, 3, 14, 8, 0, 0, 0, time.Local) }}

	_, err := f.Submit(context.Background(), models.SearchCriteria{From: " Addis Ababa ", To: "Hawassa", DepartureDate: "2025-03-15", ReturnDate: "2025-03-10"})
	require.NoError(t, err)

	got, ok := f.Criteria(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Addis Ababa", got.From)
	assert.Empty(t, got.ReturnDate)
}

func TestGeneratorDeterministic(t *testing.T) {
	a, err := NewGenerator(rand.New(rand.NewSource(7))).List(context.Background(), models.SearchCriteria{})
	require.NoError(t, err)
	b, _ := NewGenerator(rand.New(rand.NewSource(7))).List(context.Background(), models.SearchCriteria{})
	assert.Equal(t, a, b)
	require.Len(t, a, 50)

	for i, l := range a {
		assert.Equal(t, "bus-"+strconv.Itoa(i+1), l.ID)
		assert.GreaterOrEqual(t, l.Price, int64(120))
		assert.LessOrEqual(t, l.Price, int64(319))
		assert.GreaterOrEqual(t, l.Rating, 3.0)
		assert.LessOrEqual(t, l.Rating, 5.0)
		assert.GreaterOrEqual(t, l.Duration, 3.5)
		assert.Less(t, l.Duration, 5.5)
		assert.GreaterOrEqual(t, len(l.Amenities), 3)
		assert.LessOrEqual(t, len(l.Amenities), 6)
		assert.Equal(t, DefaultFrom, l.DepartureLocation)
		assert.Equal(t, 275, l.Distance)
	}
}

func fixture() []models.BusListing {
	am := func(names ...string) []models.Amenity {
		out := make([]models.Amenity, 0, len(names))
		for _, n := range names {
			out = append(out, models.Amenity{Name: n})
		}
		return out
	}
	return []models.BusListing{
		{ID: "bus-1", Company: "Selam Bus", BusType: "Standard Coach", DepartureTime: "08:00", DeparturePeriod: "morning", Price: 200, Rating: 4.1, Duration: 4.0, Amenities: am("WiFi", "AC", "Toilet")},
		{ID: "bus-2", Company: "Golden Bus", BusType: "Luxury Sleeper", DepartureTime: "22:00", DeparturePeriod: "night", Price: 310, Rating: 4.8, Duration: 5.2, Amenities: am("WiFi", "Sleeper", "Meal")},
		{ID: "bus-3", Company: "Sky Bus", BusType: "Business Class", DepartureTime: "12:00", DeparturePeriod: "afternoon", Price: 150, Rating: 3.4, Duration: 3.6, Amenities: am("AC", "Charging", "TV")},
		{ID: "bus-4", Company: "Luxury Bus Lines", BusType: "Economy Coach", DepartureTime: "06:00", DeparturePeriod: "morning", Price: 130, Rating: 3.9, Duration: 4.4, Amenities: am("WiFi", "Charging", "Snack")},
		{ID: "bus-5", Company: "Selam Bus", BusType: "Higer Bus", DepartureTime: "18:00", DeparturePeriod: "evening", Price: 260, Rating: 4.5, Duration: 3.9, Amenities: am("WiFi", "AC", "Charging")},
		{ID: "bus-6", Company: "Kibru Bus", BusType: "Business Class", DepartureTime: "10:30", DeparturePeriod: "morning", Price: 180, Rating: 4.0, Duration: 4.1, Amenities: am("Toilet", "TV", "Meal")},
		{ID: "bus-7", Company: "Ethio Bus", BusType: "Standard Coach", DepartureTime: "14:00", DeparturePeriod: "afternoon", Price: 140, Rating: 3.1, Duration: 5.0, Amenities: am("WiFi", "AC", "Snack")},
	}
}

func ids(list []models.BusListing) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestEngineDefaultsSortedByDeparture(t *testing.T) {
	e := NewEngine(fixture())
	assert.Equal(t, 7, e.Count())
	assert.Equal(t, []string{"bus-4", "bus-1", "bus-6", "bus-3", "bus-7"}, ids(e.Visible()))
	assert.True(t, e.HasMore())

	more := e.LoadMore()
	assert.Equal(t, []string{"bus-5", "bus-2"}, ids(more))
	assert.Len(t, e.Visible(), 7)
	assert.False(t, e.HasMore())
	assert.Nil(t, e.LoadMore())
}

func TestEngineFilters(t *testing.T) {
	e := NewEngine(fixture())

	e.ApplyFilters(Filters{Times: []string{"morning", "night"}})
	assert.ElementsMatch(t, []string{"bus-1", "bus-2", "bus-4", "bus-6"}, ids(e.Visible()))

	e.ApplyFilters(Filters{BusTypes: []string{"economy"}})
	assert.ElementsMatch(t, []string{"bus-1", "bus-4", "bus-7"}, ids(e.Visible()))

	e.ApplyFilters(Filters{BusTypes: []string{"luxury"}})
	assert.Equal(t, []string{"bus-2"}, ids(e.Visible()))

	e.ApplyFilters(Filters{Companies: []string{"selam-bus", "Sky Bus"}})
	assert.ElementsMatch(t, []string{"bus-1", "bus-3", "bus-5"}, ids(e.Visible()))

	e.ApplyFilters(Filters{PriceMax: 150})
	assert.ElementsMatch(t, []string{"bus-3", "bus-4", "bus-7"}, ids(e.Visible()))

	e.ApplyFilters(Filters{Amenities: []string{"wifi", "charging"}})
	assert.ElementsMatch(t, []string{"bus-4", "bus-5"}, ids(e.Visible()))

	e.ApplyFilters(Filters{Times: []string{"morning"}, Amenities: []string{"ac"}, PriceMax: 250})
	assert.Equal(t, []string{"bus-1"}, ids(e.Visible()))

	e.ClearFilters()
	assert.Equal(t, 7, e.Count())
	assert.Equal(t, int64(DefaultPriceMax), e.Filters().PriceMax)
}

func TestApplyFiltersResetsPage(t *testing.T) {
	e := NewEngine(fixture())
	e.LoadMore()
	require.Len(t, e.Visible(), 7)

	e.ApplyFilters(DefaultFilters())
	assert.Len(t, e.Visible(), 5)
}

func TestEngineSort(t *testing.T) {
	e := NewEngine(fixture())

	e.Sort(SortPriceLow)
	assert.Equal(t, []string{"bus-4", "bus-7", "bus-3", "bus-6", "bus-1"}, ids(e.Visible()))

	e.Sort(SortPriceHigh)
	assert.Equal(t, "bus-2", e.Visible()[0].ID)

	e.Sort(SortRating)
	assert.Equal(t, []string{"bus-2", "bus-5", "bus-1"}, ids(e.Visible()[:3]))

	e.Sort(SortDuration)
	assert.Equal(t, "bus-3", e.Visible()[0].ID)

	before := ids(e.Visible())
	e.Sort("bogus")
	assert.Equal(t, before, ids(e.Visible()))
	assert.Equal(t, SortDuration, e.SortKey())
}

func TestSelectBus(t *testing.T) {
	scope := storage.NewScope(storage.NewMemoryStore(), "c1")
	e := NewEngine(fixture())
	ctx := context.Background()

	got, err := e.SelectBus(ctx, scope, "", "bus-3")
	require.NoError(t, err)
	assert.Equal(t, "Sky Bus", got.Company)

	var stored models.BusListing
	require.NoError(t, scope.GetJSON(ctx, storage.Session, storage.KeySelectedBus, &stored))
	assert.Equal(t, got, stored)

	e.ApplyFilters(Filters{Times: []string{"night"}})
	_, err = e.SelectBus(ctx, scope, "", "bus-3")
	assert.True(t, domain.IsNotFound(err))
}
