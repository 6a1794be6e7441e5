package profile

import (
	"fmt"
	"strings"
	"time"

	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// Rand is the randomness the sample data generator draws from.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

var (
	sampleRoutes = [][2]string{
		{"Addis Ababa", "Adama"},
		{"Addis Ababa", "Hawassa"},
		{"Addis Ababa", "Bahir Dar"},
		{"Adama", "Dire Dawa"},
		{"Addis Ababa", "Mekele"},
	}
	sampleCompanies = []string{"Selam Bus", "Abay Bus", "Sky Bus", "Ethio Bus"}
	sampleStatuses  = []string{models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled}
	sampleBusTypes  = []string{"Economy", "Business", "Luxury"}
	sampleTxTypes   = []string{models.TxPayment, models.TxRefund, models.TxDeposit, models.TxWithdrawal}
)

// sampleUser is the account shown before the user edits anything. A logged
// in owner replaces the identity fields.
func sampleUser(owner *models.PublicUser) models.ProfileUser {
	u := models.ProfileUser{
		ID:            "user_001",
		Name:          "Abebe Kebede",
		Email:         "abebe.kebede@email.com",
		Phone:         "+251911234567",
		Avatar:        "https://via.placeholder.com/150/3b82f6/white?text=AK",
		JoinedDate:    "2023-01-15",
		TotalBookings: 12,
		TotalSpent:    12500,
		WalletBalance: 2500,
		LoyaltyPoints: 850,
	}
	if owner != nil {
		u.ID = owner.ID
		u.Name = strings.TrimSpace(owner.FirstName + " " + owner.LastName)
		u.Email = owner.Email
		u.Phone = owner.Phone
		if owner.Profile.Avatar != "" {
			u.Avatar = owner.Profile.Avatar
		}
		if t, err := time.Parse(time.RFC3339, owner.CreatedAt); err == nil {
			u.JoinedDate = utils.FormatDate(t)
		}
	}
	return u
}

func sampleBookings(r Rand, now time.Time) []models.UserBooking {
	out := make([]models.UserBooking, 8)
	for i := range out {
		route := sampleRoutes[r.Intn(len(sampleRoutes))]
		date := now.AddDate(0, 0, r.Intn(30)-15)
		meridiem := "AM"
		if r.Float64() > 0.5 {
			meridiem = "PM"
		}
		out[i] = models.UserBooking{
			ID:         fmt.Sprintf("BK%06d", i+1),
			Route:      route[0] + " → " + route[1],
			Date:       utils.FormatDate(date),
			Time:       fmt.Sprintf("%d:%d0 %s", r.Intn(12)+6, r.Intn(6), meridiem),
			Company:    sampleCompanies[r.Intn(len(sampleCompanies))],
			Passengers: r.Intn(3) + 1,
			Amount:     float64(r.Intn(3000) + 500),
			Status:     sampleStatuses[r.Intn(len(sampleStatuses))],
			BusType:    sampleBusTypes[r.Intn(len(sampleBusTypes))],
		}
	}
	return out
}

func sampleTransactions(r Rand, now time.Time) []models.Transaction {
	out := make([]models.Transaction, 10)
	for i := range out {
		date := now.AddDate(0, 0, -r.Intn(30))
		amount := float64(r.Intn(2000) + 100)
		kind := sampleTxTypes[r.Intn(len(sampleTxTypes))]
		if kind == models.TxRefund || kind == models.TxWithdrawal {
			amount = -amount
		}
		out[i] = models.Transaction{
			ID:          fmt.Sprintf("TX%08d", i+1),
			Type:        kind,
			Amount:      amount,
			Date:        utils.FormatDate(date),
			Description: fmt.Sprintf("%s for booking %d", utils.TitleWords(kind), r.Intn(1000)),
		}
	}
	return out
}
