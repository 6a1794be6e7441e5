package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"selambus/internal/domain"
	"selambus/internal/http/middleware"
	"selambus/internal/profile"
)

// profile binds the dashboard to the logged in user when there is one.
func (h *Handler) profile(c *gin.Context) profile.Service {
	svc := profile.Service{
		Scope:     h.scope(c),
		Clock:     h.Clock,
		Delay:     h.NotifyDelay,
		RequestID: middleware.GetRequestID(c),
	}
	if user, err := h.authService(c).CurrentUser(c.Request.Context()); err == nil {
		svc.Owner = &user
		svc.Users = h.Users
	}
	return svc
}

// GET /api/profile
func (h *Handler) GetProfile(c *gin.Context) {
	d, err := h.profile(c).Load(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/profile/overview
func (h *Handler) GetOverview(c *gin.Context) {
	ov, err := h.profile(c).Overview(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// GET /api/profile/bookings?status=&window=
func (h *Handler) GetUserBookings(c *gin.Context) {
	window := domain.DateWindow(c.Query("window"))
	if !window.Valid() {
		RespondDomainError(c, domain.ValidationError{Field: "window", Msg: "window must be today, week or month"})
		return
	}
	list, err := h.profile(c).Bookings(c.Request.Context(), c.Query("status"), window)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// POST /api/profile/bookings/:id/cancel
func (h *Handler) CancelUserBooking(c *gin.Context) {
	b, err := h.profile(c).CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "message": "Booking cancelled successfully. Refund processed."})
}

// GET /api/profile/wallet
func (h *Handler) GetWallet(c *gin.Context) {
	w, err := h.profile(c).Wallet(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

type fundsRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"paymentMethod"`
}

// POST /api/profile/wallet/funds
func (h *Handler) AddFunds(c *gin.Context) {
	var req fundsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	tx, err := h.profile(c).AddFunds(c.Request.Context(), req.Amount, req.Method)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// PUT /api/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profile.UpdateInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.profile(c).UpdateProfile(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "message": "Profile updated successfully!"})
}

// PUT /api/profile/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req profile.PasswordInput
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.profile(c).ChangePassword(c.Request.Context(), req); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully!"})
}

// DELETE /api/profile
func (h *Handler) ClearProfile(c *gin.Context) {
	if err := h.profile(c).Logout(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
