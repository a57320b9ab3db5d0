package handlers

import (
	"net/http"
	"strings"

	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles the booking lifecycle endpoints
type BookingHandler struct {
	bookings *services.BookingService
	receipts *services.ReceiptService
	logger   logrus.FieldLogger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, receipts *services.ReceiptService, logger logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{bookings: bookings, receipts: receipts, logger: logger}
}

// CreateBooking handles POST /api/bookings. A missing userId defaults to the caller;
// only admins may book on behalf of another user.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	if userCtx, ok := middleware.GetUserContext(c); ok && !userCtx.IsAdmin() {
		if req.UserID == 0 {
			req.UserID = userCtx.UserID
		}
		if !requireBookingUser(c, req.UserID) {
			return
		}
	}

	id, err := h.bookings.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Booking created successfully!",
		"bookingId": id,
	})
}

// GetBooking handles GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !requireBookingUser(c, booking.UserID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

// AgreeBooking handles PUT /api/bookings/:id/agree
func (h *BookingHandler) AgreeBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.authorizeBooking(c, id) {
		return
	}

	if err := h.bookings.Agree(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Booking agreed")
}

// PayBooking handles POST /api/pay-booking
func (h *BookingHandler) PayBooking(c *gin.Context) {
	var req models.PayBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	if !h.authorizeBooking(c, req.ID) {
		return
	}

	booking, err := h.bookings.Pay(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment confirmed",
		"booking": booking,
	})
}

// UpdateBooking handles POST /api/update-booking
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var req models.UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	if !h.authorizeBooking(c, req.ID) {
		return
	}

	if err := h.bookings.Update(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Booking updated successfully")
}

// CancelBooking handles POST /api/cancel-booking
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req models.BookingIDRequest
	if !bindJSON(c, &req) {
		return
	}

	if !h.authorizeBooking(c, req.ID) {
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), req.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Booking cancelled")
}

// DeleteBooking handles DELETE /api/cart/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.authorizeBooking(c, id) {
		return
	}

	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Booking removed")
}

// ListByUser handles GET /api/bookings/user/:id and its /cart/:id alias
func (h *BookingHandler) ListByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !requireBookingUser(c, userID) {
		return
	}

	bookings, err := h.bookings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// ListByUsername handles GET /api/bookings/username/:username
func (h *BookingHandler) ListByUsername(c *gin.Context) {
	username := c.Param("username")
	userCtx, _ := middleware.GetUserContext(c)
	if !userCtx.IsAdmin() && !strings.EqualFold(userCtx.Username, strings.TrimSpace(username)) {
		respondForbiddenBooking(c)
		return
	}

	bookings, err := h.bookings.ListByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// Receipt handles GET /api/bookings/:id/receipt
func (h *BookingHandler) Receipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receipts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !requireBookingUser(c, receipt.Booking.UserID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "receipt": receipt})
}

// ReceiptQR handles GET /api/bookings/:id/receipt/qr
func (h *BookingHandler) ReceiptQR(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.authorizeBooking(c, id) {
		return
	}

	png, err := h.receipts.QRCode(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// authorizeBooking lets the booking's owner or an admin act on it
func (h *BookingHandler) authorizeBooking(c *gin.Context, bookingID int64) bool {
	if userCtx, ok := middleware.GetUserContext(c); ok && userCtx.IsAdmin() {
		return true
	}

	ownerID, err := h.bookings.OwnerID(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return false
	}
	return requireBookingUser(c, ownerID)
}

// requireBookingUser passes when the caller is userID or an admin
func requireBookingUser(c *gin.Context, userID int64) bool {
	userCtx, ok := middleware.GetUserContext(c)
	if ok && (userCtx.IsAdmin() || userCtx.UserID == userID) {
		return true
	}
	respondForbiddenBooking(c)
	return false
}

func respondForbiddenBooking(c *gin.Context) {
	c.JSON(http.StatusForbidden, ErrorResponse{
		Success: false,
		Error:   "forbidden",
		Message: "You can only access your own bookings",
	})
}
