package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"selambus/internal/confirmation"
	"selambus/internal/http/middleware"
)

func (h *Handler) confirmation(c *gin.Context) confirmation.Service {
	return confirmation.Service{
		Scope:     h.scope(c),
		Notifier:  h.Notifier,
		Delay:     h.NotifyDelay,
		Clock:     h.Clock,
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/confirmation
func (h *Handler) GetConfirmation(c *gin.Context) {
	conf, err := h.confirmation(c).Booking(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

// GET /api/confirmation/qr
func (h *Handler) GetQR(c *gin.Context) {
	payload, err := h.confirmation(c).QR(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// GET /api/confirmation/ticket
func (h *Handler) GetTicketPDF(c *gin.Context) {
	pdfBytes, filename, err := h.confirmation(c).TicketPDF(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/confirmation/receipt
func (h *Handler) GetReceiptPDF(c *gin.Context) {
	pdfBytes, filename, err := h.confirmation(c).ReceiptPDF(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

type contactRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// POST /api/confirmation/email
func (h *Handler) EmailTicket(c *gin.Context) {
	var req contactRequest
	if !BindOptionalJSON(c, &req) {
		return
	}
	msg, err := h.confirmation(c).EmailTicket(c.Request.Context(), req.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// POST /api/confirmation/sms
func (h *Handler) SendSMS(c *gin.Context) {
	var req contactRequest
	if !BindOptionalJSON(c, &req) {
		return
	}
	msg, err := h.confirmation(c).SendSMS(c.Request.Context(), req.Phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// POST /api/confirmation/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	msg, err := h.confirmation(c).RequestCancellation(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
