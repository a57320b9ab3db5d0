package handlers

import (
	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Booking *BookingHandler
	Catalog *CatalogHandler
	Message *MessageHandler
	Admin   *AdminHandler
}

// RegisterRoutes mounts the API under /api
func RegisterRoutes(router *gin.Engine, h Handlers, jwtService *jwt.Service, logger logrus.FieldLogger) {
	api := router.Group("/api")

	// Public routes
	api.POST("/signup", h.Auth.Signup)
	api.POST("/login", h.Auth.Login)
	api.POST("/refresh", h.Auth.Refresh)
	api.POST("/send-otp", h.Auth.SendOTP)
	api.POST("/reset-password", h.Auth.ResetPassword)

	api.GET("/cities", h.Catalog.Cities)
	api.GET("/highlights", h.Catalog.Highlights)
	api.GET("/events", h.Catalog.Events)
	api.GET("/event-id/:name", h.Catalog.EventID)
	api.POST("/save-city", h.Catalog.SaveCity)
	api.GET("/get-city", h.Catalog.GetCity)
	api.POST("/save-date", h.Catalog.SaveDate)
	api.GET("/get-date", h.Catalog.GetDate)

	api.POST("/feedback", middleware.OptionalAuth(jwtService), h.Message.SubmitFeedback)

	// Protected routes (require JWT authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService, logger))
	{
		protected.POST("/logout", h.Auth.Logout)
		protected.GET("/current-user", h.Auth.CurrentUser)

		protected.GET("/user/:username", h.Profile.GetUser)
		protected.POST("/update-profile", h.Profile.UpdateProfile)
		protected.POST("/upload-profile-pic", h.Profile.UploadProfilePic)
		protected.POST("/verify-password", h.Profile.VerifyPassword)
		protected.POST("/update-password", h.Profile.UpdatePassword)

		protected.POST("/add-event", h.Catalog.AddEvent)

		protected.POST("/bookings", h.Booking.CreateBooking)
		protected.GET("/bookings/:id", h.Booking.GetBooking)
		protected.GET("/bookings/details/:id", h.Booking.GetBooking)
		protected.PUT("/bookings/:id/agree", h.Booking.AgreeBooking)
		protected.GET("/bookings/:id/receipt", h.Booking.Receipt)
		protected.GET("/bookings/:id/receipt/qr", h.Booking.ReceiptQR)
		protected.GET("/bookings/user/:id", h.Booking.ListByUser)
		protected.GET("/bookings/username/:username", h.Booking.ListByUsername)
		protected.GET("/user-bookings/:id", h.Booking.ListByUser)
		protected.GET("/cart/:id", h.Booking.ListByUser)
		protected.DELETE("/cart/:id", h.Booking.DeleteBooking)
		protected.POST("/pay-booking", h.Booking.PayBooking)
		protected.POST("/update-booking", h.Booking.UpdateBooking)
		protected.POST("/cancel-booking", h.Booking.CancelBooking)

		protected.GET("/chat/:id", h.Message.ChatHistory)
		protected.POST("/chat/:id", h.Message.PostChat)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtService, logger), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/overview", h.Admin.Overview)

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id", h.Admin.UpdateUser)
		admin.DELETE("/users/:id", h.Admin.DeleteUser)
		admin.GET("/export/users.csv", h.Admin.ExportUsers)

		admin.GET("/events", h.Admin.ListEvents)
		admin.POST("/events", h.Admin.CreateEvent)
		admin.DELETE("/events/:id", h.Admin.DeleteEvent)

		admin.GET("/coupons", h.Admin.ListCoupons)
		admin.POST("/coupons", h.Admin.CreateCoupon)
		admin.DELETE("/coupons/:id", h.Admin.DeleteCoupon)

		admin.GET("/feedback", h.Admin.ListFeedback)
		admin.POST("/feedback/:id/reply", h.Admin.ReplyFeedback)

		admin.GET("/bookings", h.Admin.ListBookings)
		admin.GET("/bookings/status/:status", h.Admin.BookingsByStatus)
		admin.PUT("/bookings/:id/approve", h.Admin.ApproveBooking)
		admin.PUT("/bookings/:id/cancel", h.Admin.CancelBooking)
	}
}
