package models

type PaymentMethod string

const (
	MethodTeleBirr PaymentMethod = "telebirr"
	MethodCBEBirr  PaymentMethod = "cbebirr"
	MethodCard     PaymentMethod = "card"
	MethodBank     PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodTeleBirr, MethodCBEBirr, MethodCard, MethodBank:
		return true
	default:
		return false
	}
}

// Label is the display name used on tickets.
func (m PaymentMethod) Label() string {
	switch m {
	case MethodTeleBirr:
		return "TeleBirr"
	case MethodCBEBirr:
		return "CBE Birr"
	case MethodCard:
		return "Card"
	case MethodBank:
		return "Bank Transfer"
	default:
		return string(m)
	}
}

const (
	PaymentCompleted           = "completed"
	PaymentPendingVerification = "pending_verification"
	PaymentCancelRequested     = "cancellation_requested"
)

type PaymentRecord struct {
	Method               PaymentMethod `json:"paymentMethod"`
	PaymentID            string        `json:"paymentId"`
	TransactionID        string        `json:"transactionId"`
	Reference            string        `json:"reference"`
	Success              bool          `json:"success"`
	RequiresVerification bool          `json:"requiresVerification,omitempty"`
	Status               string        `json:"status"`
	Message              string        `json:"message,omitempty"`
	Timestamp            string        `json:"timestamp"`
}

// PaymentData is the booking draft merged with its payment record, the
// input of the confirmation stage.
type PaymentData struct {
	BookingDraft
	Pricing Pricing `json:"pricing"`
	PaymentRecord
}
