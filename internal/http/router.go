package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "selambus/internal/config"
	h "selambus/internal/http/handlers"
	"selambus/internal/http/middleware"
)

func NewRouter(env intconfig.Env, hd *h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ClientID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", h.Routes)

		// Search form and results
		api.GET("/cities", h.Cities)
		api.GET("/search", hd.GetSearch)
		api.POST("/search", hd.SubmitSearch)

		results := api.Group("/results")
		results.GET("", hd.GetResults)
		results.POST("/filters", hd.ApplyFilters)
		results.DELETE("/filters", hd.ClearFilters)
		results.PUT("/sort", hd.SortResults)
		results.POST("/more", hd.LoadMore)
		results.POST("/:id/select", hd.SelectBus)

		// Seat map
		seats := api.Group("/seats")
		seats.GET("", hd.GetSeats)
		seats.DELETE("", hd.ClearSeats)
		seats.GET("/stream", hd.SeatStream)
		seats.PUT("/class", hd.SwitchClass)
		seats.POST("/validate", hd.ValidatePassengers)
		seats.POST("/proceed", hd.ProceedToPayment)
		seats.POST("/:seat/toggle", hd.ToggleSeat)
		seats.PUT("/:seat/passenger", hd.SetPassenger)

		// Payment
		pay := api.Group("/payment")
		pay.GET("", hd.PaymentSummary)
		pay.POST("", hd.Pay)
		pay.POST("/bank", hd.PayBank)

		// Confirmation
		conf := api.Group("/confirmation")
		conf.GET("", hd.GetConfirmation)
		conf.GET("/qr", hd.GetQR)
		conf.GET("/ticket", hd.GetTicketPDF)
		conf.GET("/receipt", hd.GetReceiptPDF)
		conf.POST("/email", hd.EmailTicket)
		conf.POST("/sms", hd.SendSMS)
		conf.POST("/cancel", hd.CancelBooking)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hd.Register)
		auth.POST("/login", hd.Login)
		auth.POST("/social/:provider", hd.SocialLogin)
		auth.POST("/reset-password", hd.ResetPassword)
		auth.POST("/logout", hd.Logout)
		auth.GET("/me", hd.Me)
		auth.POST("/password-strength", h.PasswordStrength)

		// Profile
		profile := api.Group("/profile")
		profile.GET("", hd.GetProfile)
		profile.PUT("", hd.UpdateProfile)
		profile.DELETE("", hd.ClearProfile)
		profile.GET("/overview", hd.GetOverview)
		profile.GET("/bookings", hd.GetUserBookings)
		profile.POST("/bookings/:id/cancel", hd.CancelUserBooking)
		profile.GET("/wallet", hd.GetWallet)
		profile.POST("/wallet/funds", hd.AddFunds)
		profile.PUT("/password", hd.ChangePassword)

		// Admin
		adm := api.Group("/admin", middleware.Auth(hd.Tokens, true), middleware.RequireAdmin(hd.AdminEmail))
		adm.GET("/dashboard", hd.AdminDashboard)
		adm.GET("/bookings", hd.AdminBookings)
		adm.GET("/bookings/:id", hd.AdminBooking)
		adm.GET("/buses", hd.AdminBuses)
		adm.GET("/buses/:id", hd.AdminBus)
		adm.GET("/users", hd.AdminUsers)
		adm.GET("/users/:id", hd.AdminUser)
		adm.GET("/search", hd.AdminSearch)
		adm.GET("/export/:type", hd.AdminExport)
	}

	h.SetRouter(r)
	return r
}
