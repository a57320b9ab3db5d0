package handlers

import (
	"bytes"
	"net/http"

	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles the admin console endpoints
type AdminHandler struct {
	users    *services.UserService
	catalog  *services.CatalogService
	coupons  *services.CouponService
	bookings *services.BookingService
	messages *services.MessageService
	reports  *services.ReportService
	logger   logrus.FieldLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users *services.UserService,
	catalog *services.CatalogService,
	coupons *services.CouponService,
	bookings *services.BookingService,
	messages *services.MessageService,
	reports *services.ReportService,
	logger logrus.FieldLogger,
) *AdminHandler {
	return &AdminHandler{
		users:    users,
		catalog:  catalog,
		coupons:  coupons,
		bookings: bookings,
		messages: messages,
		reports:  reports,
		logger:   logger,
	}
}

// Overview handles GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.reports.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// UpdateUser handles PUT /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.AdminUpdate(c.Request.Context(), id, req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "User updated")
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "User deleted")
}

// ExportUsers handles GET /api/admin/export/users.csv
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reports.WriteUsersCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ListEvents handles GET /api/admin/events
func (h *AdminHandler) ListEvents(c *gin.Context) {
	events, err := h.catalog.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

// CreateEvent handles POST /api/admin/events
func (h *AdminHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = adminName(c)
	}

	event, err := h.catalog.AddEvent(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

// DeleteEvent handles DELETE /api/admin/events/:id
func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteEvent(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Event deleted")
}

// ListCoupons handles GET /api/admin/coupons
func (h *AdminHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "coupons": coupons})
}

// CreateCoupon handles POST /api/admin/coupons
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req models.CreateCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = adminName(c)
	}

	coupon, err := h.coupons.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "coupon": coupon})
}

// DeleteCoupon handles DELETE /api/admin/coupons/:id
func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.coupons.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Coupon deleted")
}

// ListFeedback handles GET /api/admin/feedback
func (h *AdminHandler) ListFeedback(c *gin.Context) {
	feedback, err := h.messages.ListFeedback(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "feedback": feedback})
}

// ReplyFeedback handles POST /api/admin/feedback/:id/reply
func (h *AdminHandler) ReplyFeedback(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.FeedbackReplyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.messages.ReplyToFeedback(c.Request.Context(), id, req.Reply); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Reply sent")
}

// ListBookings handles GET /api/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// BookingsByStatus handles GET /api/admin/bookings/status/:status
func (h *AdminHandler) BookingsByStatus(c *gin.Context) {
	bookings, err := h.bookings.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// ApproveBooking handles PUT /api/admin/bookings/:id/approve
func (h *AdminHandler) ApproveBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.Approve(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Booking approved")
}

// CancelBooking handles PUT /api/admin/bookings/:id/cancel
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Booking cancelled")
}

func adminName(c *gin.Context) string {
	if userCtx, ok := middleware.GetUserContext(c); ok && userCtx.Username != "" {
		return userCtx.Username
	}
	return models.RoleAdmin
}
