package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/http/middleware"
	"selambus/internal/payment"
	"selambus/internal/seatmap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// any origin; the stream only carries the caller's own seat view
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) seatManager(c *gin.Context) *seatmap.Manager {
	scope := h.scope(c)
	create := func() *seatmap.Manager {
		return seatmap.NewManager(seatmap.Options{
			Class:     domain.ClassEconomy,
			Scope:     scope,
			Clock:     h.Clock,
			RequestID: middleware.GetRequestID(c),
		})
	}
	if middleware.IsAnonymousClient(c) {
		return create()
	}
	return h.seats.get(scope.ClientID, create)
}

// GET /api/seats
func (h *Handler) GetSeats(c *gin.Context) {
	c.JSON(http.StatusOK, h.seatManager(c).View())
}

// POST /api/seats/:seat/toggle
func (h *Handler) ToggleSeat(c *gin.Context) {
	m := h.seatManager(c)
	if err := m.ToggleSeat(c.Param("seat")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.View())
}

// DELETE /api/seats
func (h *Handler) ClearSeats(c *gin.Context) {
	m := h.seatManager(c)
	m.ClearAllSeats()
	c.JSON(http.StatusOK, m.View())
}

type classRequest struct {
	Class domain.BusClass `json:"busType"`
}

// PUT /api/seats/class
func (h *Handler) SwitchClass(c *gin.Context) {
	var req classRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	m := h.seatManager(c)
	if err := m.SwitchBusClass(req.Class); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.View())
}

// PUT /api/seats/:seat/passenger
func (h *Handler) SetPassenger(c *gin.Context) {
	var req models.PassengerRecord
	if !BindJSONOrError(c, &req) {
		return
	}
	m := h.seatManager(c)
	if err := m.SetPassenger(c.Param("seat"), req); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.View())
}

// POST /api/seats/validate
func (h *Handler) ValidatePassengers(c *gin.Context) {
	v := h.seatManager(c).ValidatePassengerData()
	details := make([]FieldError, 0, len(v.Violations))
	for _, e := range v.Violations {
		details = append(details, FieldError{Field: e.Field, Message: e.Msg})
	}
	c.JSON(http.StatusOK, gin.H{"isValid": v.IsValid, "passengers": v.Passengers, "errors": details})
}

// POST /api/seats/proceed
func (h *Handler) ProceedToPayment(c *gin.Context) {
	cid := middleware.GetClientID(c)
	// the checkout is replaced below; never while it is charging
	if p, ok := h.payments.peek(cid); ok && p.Busy() {
		RespondDomainError(c, domain.ConflictError{Resource: "payment", Msg: payment.ErrInFlight.Error(), Err: payment.ErrInFlight})
		return
	}
	draft, err := h.seatManager(c).ProceedToPayment(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	// a new draft starts a new checkout
	h.payments.drop(cid)
	c.JSON(http.StatusOK, gin.H{"bookingData": draft})
}

// GET /api/seats/stream pushes the seat view on every change.
func (h *Handler) SeatStream(c *gin.Context) {
	m := h.seatManager(c)
	cid := middleware.GetClientID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[SEATS] action=stream client_id=%s msg=upgrade error: %v", cid, err)
		return
	}

	dirty := make(chan struct{}, 1)
	cancel := m.Subscribe(func(seatmap.View) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[SEATS] action=stream client_id=%s msg=read error: %v", cid, err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()

	write := func() bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(m.View()) == nil
	}
	if !write() {
		return
	}
	for {
		select {
		case <-dirty:
			if !write() {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
