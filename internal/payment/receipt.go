package payment

import (
	"github.com/gabriel-vasile/mimetype"

	"selambus/internal/domain"
)

const MaxReceiptSize = 5 * 1024 * 1024

var receiptTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Receipt is an uploaded bank transfer slip.
type Receipt struct {
	Name string
	Data []byte
}

// Check enforces the size limit. The content type is sniffed from the bytes.
func (r Receipt) Check() error {
	if len(r.Data) == 0 {
		return domain.ValidationError{Field: "bankReceipt", Msg: "Please upload your bank transfer receipt"}
	}
	if len(r.Data) > MaxReceiptSize {
		return domain.ValidationError{Field: "bankReceipt", Msg: "File size must be less than 5MB"}
	}
	mt := mimetype.Detect(r.Data)
	for _, t := range receiptTypes {
		if mt.Is(t) {
			return nil
		}
	}
	return domain.ValidationError{Field: "bankReceipt", Msg: "Please upload a JPG, PNG, or PDF file"}
}

// ContentType is the detected mime type of the receipt.
func (r Receipt) ContentType() string {
	return mimetype.Detect(r.Data).String()
}
