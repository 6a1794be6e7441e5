package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/http/middleware"
	"selambus/internal/payment"
)

func (h *Handler) processor(c *gin.Context) *payment.Processor {
	scope := h.scope(c)
	create := func() *payment.Processor {
		var rnd payment.Rand
		if h.PaymentRand != nil {
			rnd = h.PaymentRand()
		}
		return payment.NewProcessor(payment.Options{
			Scope:     scope,
			Rand:      rnd,
			Delay:     h.PaymentDelay,
			Clock:     h.Clock,
			RequestID: middleware.GetRequestID(c),
		})
	}
	if middleware.IsAnonymousClient(c) {
		return create()
	}
	return h.payments.get(scope.ClientID, create)
}

// GET /api/payment
func (h *Handler) PaymentSummary(c *gin.Context) {
	sum, err := h.processor(c).Summary(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// POST /api/payment
func (h *Handler) Pay(c *gin.Context) {
	var in payment.Input
	if !BindJSONOrError(c, &in) {
		return
	}
	if in.Method == models.MethodBank {
		RespondDomainError(c, domain.ValidationError{Field: "method", Msg: "bank transfers upload a receipt to /api/payment/bank"})
		return
	}
	h.process(c, in)
}

// POST /api/payment/bank (multipart, file field "bankReceipt")
func (h *Handler) PayBank(c *gin.Context) {
	in := payment.Input{Method: models.MethodBank}

	fh, err := c.FormFile("bankReceipt")
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "bankReceipt", Msg: "Please upload your bank transfer receipt", Err: err})
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cannot read upload", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, payment.MaxReceiptSize+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "cannot read upload", err)
		return
	}
	in.Receipt = &payment.Receipt{Name: fh.Filename, Data: data}
	h.process(c, in)
}

func (h *Handler) process(c *gin.Context, in payment.Input) {
	data, err := h.processor(c).Process(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	cid := middleware.GetClientID(c)
	h.payments.drop(cid)
	h.seats.drop(cid)
	c.JSON(http.StatusOK, gin.H{"paymentData": data, "message": data.Message})
}
