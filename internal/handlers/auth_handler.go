package handlers

import (
	"net/http"
	"time"

	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/eventzone/booking-backend/internal/utils"
	"github.com/eventzone/booking-backend/pkg/notify"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth      *services.AuthService
	otp       *services.OTPService
	users     *services.UserService
	audit     *services.AuditService
	limiter   *services.RateLimitService
	sender    notify.Sender
	exposeOTP bool
	logger    logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler. With exposeOTP the reset code is
// returned in the response instead of being handed to sender.
func NewAuthHandler(
	auth *services.AuthService,
	otp *services.OTPService,
	users *services.UserService,
	audit *services.AuditService,
	limiter *services.RateLimitService,
	sender notify.Sender,
	exposeOTP bool,
	logger logrus.FieldLogger,
) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		otp:       otp,
		users:     users,
		audit:     audit,
		limiter:   limiter,
		sender:    sender,
		exposeOTP: exposeOTP,
		logger:    logger,
	}
}

// LoginResponse wraps the token pair in the success envelope
type LoginResponse struct {
	Success bool `json:"success"`
	*models.LoginResponse
}

// SendOTPResponse represents the response after issuing a reset code
type SendOTPResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int       `json:"expires_in_seconds"`
	OTP       string    `json:"otp,omitempty"`
}

// Signup handles POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Signup successful",
		"user":    user,
	})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	clientIP, userAgent := utils.GetRealIP(c), utils.GetUserAgent(c)
	role := models.RoleUser
	if req.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.audit.LogLogin(req.Username, role, clientIP, userAgent, false, err.Error())
		respondError(c, h.logger, err)
		return
	}

	h.audit.LogLogin(resp.User.Username, resp.User.Role, clientIP, userAgent, true, "")
	c.JSON(http.StatusOK, LoginResponse{Success: true, LoginResponse: resp})
}

// Refresh handles POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	clientIP, userAgent := utils.GetRealIP(c), utils.GetUserAgent(c)

	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.audit.LogTokenRefresh("", clientIP, userAgent, false)
		respondError(c, h.logger, err)
		return
	}

	h.audit.LogTokenRefresh(resp.User.Username, clientIP, userAgent, true)
	c.JSON(http.StatusOK, LoginResponse{Success: true, LoginResponse: resp})
}

// Logout handles POST /api/logout. Tokens are stateless, so this only records the event.
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)
	h.audit.LogLogout(userCtx.Username, utils.GetRealIP(c), utils.GetUserAgent(c))
	respondOK(c, "Logged out successfully")
}

// CurrentUser handles GET /api/current-user
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Success: false, Error: "unauthorized", Message: "Not logged in"})
		return
	}

	if userCtx.IsAdmin() {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": models.Account{
				ID:       userCtx.UserID,
				Username: userCtx.Username,
				FullName: userCtx.FullName,
				Role:     userCtx.Role,
			},
		})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"role":    userCtx.Role,
	})
}

// SendOTP handles POST /api/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	clientIP, userAgent := utils.GetRealIP(c), utils.GetUserAgent(c)

	if err := h.limiter.CheckOTPRateLimit(ctx, req.UserInput, clientIP); err != nil {
		h.audit.LogOTPRequest(req.UserInput, clientIP, userAgent, false, "rate limited")
		respondError(c, h.logger, err)
		return
	}

	issued, err := h.otp.Issue(ctx, req.UserInput)
	if err != nil {
		// Unknown accounts spend the same budget as known ones
		if services.ErrorCategory(err) == services.ErrNotFound {
			h.recordOTPRequest(c, req.UserInput, clientIP)
		}
		h.audit.LogOTPRequest(req.UserInput, clientIP, userAgent, false, err.Error())
		respondError(c, h.logger, err)
		return
	}

	resp := SendOTPResponse{
		Success:   true,
		Message:   "OTP generated",
		ExpiresAt: issued.ExpiresAt,
		ExpiresIn: int(issued.TTL.Seconds()),
	}

	if h.exposeOTP {
		resp.OTP = issued.Code
	} else {
		if err := h.sender.SendOTP(ctx, issued.Email, issued.Code, issued.ExpiresAt); err != nil {
			h.audit.LogOTPRequest(req.UserInput, clientIP, userAgent, false, "delivery failed")
			h.logger.WithError(err).WithField("sender", h.sender.GetName()).Error("Failed to deliver reset code")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Success: false,
				Error:   "delivery_failed",
				Message: "Failed to send OTP. Please try again.",
			})
			return
		}
		resp.Message = "OTP sent to the registered email"
	}

	h.recordOTPRequest(c, req.UserInput, clientIP)

	h.audit.LogOTPRequest(req.UserInput, clientIP, userAgent, true, "")
	c.JSON(http.StatusOK, resp)
}

// ResetPassword handles POST /api/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	clientIP, userAgent := utils.GetRealIP(c), utils.GetUserAgent(c)

	if err := h.limiter.CheckResetAttempts(ctx, req.UserInput, clientIP); err != nil {
		h.audit.LogPasswordReset(req.UserInput, clientIP, userAgent, false, "rate limited")
		respondError(c, h.logger, err)
		return
	}

	if err := h.otp.Reset(ctx, req); err != nil {
		switch services.ErrorCategory(err) {
		case services.ErrInvalidToken, services.ErrExpired, services.ErrNotFound:
			if recErr := h.limiter.RecordFailedReset(ctx, req.UserInput, clientIP); recErr != nil {
				h.logger.WithError(recErr).Warn("Failed to record failed password reset")
			}
		}
		h.audit.LogPasswordReset(req.UserInput, clientIP, userAgent, false, err.Error())
		respondError(c, h.logger, err)
		return
	}

	h.audit.LogPasswordReset(req.UserInput, clientIP, userAgent, true, "")
	respondOK(c, "Password reset successful")
}

func (h *AuthHandler) recordOTPRequest(c *gin.Context, identifier, clientIP string) {
	if err := h.limiter.RecordOTPRequest(c.Request.Context(), identifier, clientIP); err != nil {
		h.logger.WithError(err).Warn("Failed to record OTP request for rate limiting")
	}
}
