package models

// SearchCriteria is the searchData record of the search form.
type SearchCriteria struct {
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	IsRoundTrip   bool   `json:"isRoundTrip"`
}

type Amenity struct {
	Icon string `json:"icon"`
	Name string `json:"name"`
}

// BusListing is one search result and the shape of selectedBus.
type BusListing struct {
	ID                string    `json:"id"`
	Company           string    `json:"company"`
	Logo              string    `json:"logo"`
	Color             string    `json:"color"`
	BusType           string    `json:"busType"`
	DepartureTime     string    `json:"departureTime"`
	DeparturePeriod   string    `json:"departurePeriod"`
	ArrivalTime       string    `json:"arrivalTime"`
	Duration          float64   `json:"duration"`
	Rating            float64   `json:"rating"`
	Price             int64     `json:"price"`
	SeatsAvailable    int       `json:"seatsAvailable"`
	Amenities         []Amenity `json:"amenities"`
	DepartureLocation string    `json:"departureLocation"`
	DepartureTerminal string    `json:"departureTerminal"`
	ArrivalLocation   string    `json:"arrivalLocation"`
	ArrivalTerminal   string    `json:"arrivalTerminal"`
	Distance          int       `json:"distance"`
}
