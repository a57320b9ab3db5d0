package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/eventzone/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the plain acknowledgement returned by write endpoints
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// errorStatus maps a service error category to an HTTP status and error type
func errorStatus(err error) (int, string) {
	switch services.ErrorCategory(err) {
	case services.ErrValidation:
		return http.StatusBadRequest, "validation_error"
	case services.ErrInvalidToken:
		return http.StatusBadRequest, "invalid_otp"
	case services.ErrExpired:
		return http.StatusBadRequest, "otp_expired"
	case services.ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case services.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case services.ErrConflict:
		return http.StatusConflict, "conflict"
	case services.ErrCouponExpired:
		return http.StatusUnprocessableEntity, "coupon_expired"
	case services.ErrRateLimited:
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError logs err once and writes the mapped status. Internal errors never leak their text.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status, errType := errorStatus(err)

	entry := logger.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"status": status,
	}).WithError(err)

	var rateErr *services.RateLimitError
	if errors.As(err, &rateErr) {
		retryIn := int(math.Ceil(time.Until(rateErr.RetryAfter).Seconds()))
		if retryIn < 1 {
			retryIn = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryIn))
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
		message = "Internal server error"
	} else {
		entry.Warn("Request rejected")
	}

	c.JSON(status, ErrorResponse{Success: false, Error: errType, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "validation_error", Message: message})
}

func respondOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}

// parseIDParam reads a positive integer path parameter, answering 400 when it is not one
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return false
	}
	return true
}
