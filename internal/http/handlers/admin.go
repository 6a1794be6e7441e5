package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"selambus/internal/admin"
	"selambus/internal/http/middleware"
)

func (h *Handler) admin(c *gin.Context) admin.Service {
	return admin.Service{Source: h.Admin, Clock: h.Clock, RequestID: middleware.GetRequestID(c)}
}

// GET /api/admin/dashboard
func (h *Handler) AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.admin(c).Dashboard())
}

// GET /api/admin/bookings
func (h *Handler) AdminBookings(c *gin.Context) {
	var f admin.BookingFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid query", err)
		return
	}
	page, err := h.admin(c).Bookings(f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/admin/bookings/:id
func (h *Handler) AdminBooking(c *gin.Context) {
	b, err := h.admin(c).Booking(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/admin/buses
func (h *Handler) AdminBuses(c *gin.Context) {
	var f admin.BusFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid query", err)
		return
	}
	c.JSON(http.StatusOK, h.admin(c).Buses(f))
}

// GET /api/admin/buses/:id
func (h *Handler) AdminBus(c *gin.Context) {
	b, err := h.admin(c).Bus(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/admin/users
func (h *Handler) AdminUsers(c *gin.Context) {
	var f admin.UserFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid query", err)
		return
	}
	c.JSON(http.StatusOK, h.admin(c).Users(f))
}

// GET /api/admin/users/:id
func (h *Handler) AdminUser(c *gin.Context) {
	u, err := h.admin(c).User(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /api/admin/search?q=
func (h *Handler) AdminSearch(c *gin.Context) {
	c.JSON(http.StatusOK, h.admin(c).Search(c.Query("q")))
}

// GET /api/admin/export/:type
func (h *Handler) AdminExport(c *gin.Context) {
	name, data, err := h.admin(c).Export(c.Param("type"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
