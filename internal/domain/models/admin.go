package models

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type RouteRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AdminBooking is a back-office booking row.
type AdminBooking struct {
	ID        string   `json:"id"`
	Customer  Customer `json:"customer"`
	Route     RouteRef `json:"route"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Seats     int      `json:"seats"`
	Amount    int64    `json:"amount"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"createdAt"`
}

type Bus struct {
	ID            string   `json:"id"`
	Company       string   `json:"company"`
	Type          string   `json:"type"`
	Model         string   `json:"model"`
	Capacity      int      `json:"capacity"`
	Amenities     []string `json:"amenities"`
	Status        string   `json:"status"`
	Route         RouteRef `json:"route"`
	DepartureTime string   `json:"departureTime"`
	Price         int64    `json:"price"`
}

type AdminUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	JoinDate string `json:"joinDate"`
	Bookings int    `json:"bookings"`
	Avatar   string `json:"avatar"`
}

type Route struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Distance int    `json:"distance"`
	Duration string `json:"duration"`
	Price    int64  `json:"price"`
}
