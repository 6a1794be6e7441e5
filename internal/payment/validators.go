package payment

import (
	"regexp"
	"strings"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

var (
	mobileRe = regexp.MustCompile(`^09[0-9]{8}$`)
	cardRe   = regexp.MustCompile(`^[0-9]{16}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvRe    = regexp.MustCompile(`^[0-9]{3}$`)
	pinRe    = regexp.MustCompile(`^[0-9]{4}$`)
)

func ValidMobile(s string) bool     { return mobileRe.MatchString(utils.StripSpaces(s)) }
func ValidCardNumber(s string) bool { return cardRe.MatchString(utils.StripSpaces(s)) }
func ValidExpiry(s string) bool     { return expiryRe.MatchString(strings.TrimSpace(s)) }
func ValidCVV(s string) bool        { return cvvRe.MatchString(strings.TrimSpace(s)) }
func ValidPIN(s string) bool        { return pinRe.MatchString(strings.TrimSpace(s)) }

// Input is the payment form. Only the fields of Method are read.
type Input struct {
	Method models.PaymentMethod `json:"method"`

	Phone string `json:"phone,omitempty"`
	PIN   string `json:"pin,omitempty"`

	CardNumber string `json:"cardNumber,omitempty"`
	Expiry     string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	CardHolder string `json:"cardholderName,omitempty"`

	Receipt *Receipt `json:"-"`
}

// Validate checks the fields of the selected method and reports every
// failing field.
func (in Input) Validate() error {
	var errs domain.FieldErrors
	add := func(field, msg string) {
		errs = append(errs, domain.ValidationError{Field: field, Msg: msg})
	}

	switch in.Method {
	case models.MethodTeleBirr, models.MethodCBEBirr:
		if !ValidMobile(in.Phone) {
			add("phone", "Please enter a valid phone number (09XXXXXXXX)")
		}
		if !ValidPIN(in.PIN) {
			add("pin", "PIN must be 4 digits")
		}
	case models.MethodCard:
		if !ValidCardNumber(in.CardNumber) {
			add("cardNumber", "Please enter a valid 16-digit card number")
		}
		if !ValidExpiry(in.Expiry) {
			add("expiryDate", "Please enter a valid expiry date (MM/YY)")
		}
		if !ValidCVV(in.CVV) {
			add("cvv", "CVV must be 3 digits")
		}
		if strings.TrimSpace(in.CardHolder) == "" {
			add("cardholderName", "Cardholder name is required")
		}
	case models.MethodBank:
		if in.Receipt == nil {
			add("bankReceipt", "Please upload your bank transfer receipt")
		} else if err := in.Receipt.Check(); err != nil {
			return err
		}
	default:
		add("method", "Invalid payment method")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
