package models

// ProfileUser is the currentUser record of the profile page.
type ProfileUser struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Avatar        string  `json:"avatar"`
	JoinedDate    string  `json:"joinedDate"`
	TotalBookings int     `json:"totalBookings"`
	TotalSpent    float64 `json:"totalSpent"`
	WalletBalance float64 `json:"walletBalance"`
	LoyaltyPoints int     `json:"loyaltyPoints"`
}

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

type UserBooking struct {
	ID         string  `json:"id"`
	Route      string  `json:"route"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Company    string  `json:"company"`
	Passengers int     `json:"passengers"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	BusType    string  `json:"busType"`
}

const (
	TxPayment    = "payment"
	TxRefund     = "refund"
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
)

type Transaction struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}
