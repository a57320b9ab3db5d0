package services

import (
	"github.com/eventzone/booking-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuditService writes security events to a dedicated logrus stream
type AuditService struct {
	logger  logrus.FieldLogger
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(logger logrus.FieldLogger, enabled bool) *AuditService {
	return &AuditService{
		logger:  logger.WithField("component", "audit"),
		enabled: enabled,
	}
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	Action    string // otp_request, password_reset, login, logout, token_refresh
	Subject   string // username, email or identifier the event concerns
	Success   bool
	Reason    string
	IPAddress string
	UserAgent string
	Details   logrus.Fields
}

// LogOTPRequest records a password-reset code request
func (s *AuditService) LogOTPRequest(identifier, ipAddress, userAgent string, success bool, reason string) {
	s.logEvent(AuditEvent{
		Action: "otp_request", Subject: identifier, Success: success, Reason: reason,
		IPAddress: ipAddress, UserAgent: userAgent,
	})
}

// LogPasswordReset records a password reset attempt
func (s *AuditService) LogPasswordReset(identifier, ipAddress, userAgent string, success bool, reason string) {
	s.logEvent(AuditEvent{
		Action: "password_reset", Subject: identifier, Success: success, Reason: reason,
		IPAddress: ipAddress, UserAgent: userAgent,
	})
}

// LogLogin records a login attempt
func (s *AuditService) LogLogin(username, role, ipAddress, userAgent string, success bool, reason string) {
	s.logEvent(AuditEvent{
		Action: "login", Subject: username, Success: success, Reason: reason,
		IPAddress: ipAddress, UserAgent: userAgent,
		Details: logrus.Fields{"role": role},
	})
}

// LogLogout records a logout
func (s *AuditService) LogLogout(username, ipAddress, userAgent string) {
	s.logEvent(AuditEvent{
		Action: "logout", Subject: username, Success: true,
		IPAddress: ipAddress, UserAgent: userAgent,
	})
}

// LogTokenRefresh records a refresh token exchange
func (s *AuditService) LogTokenRefresh(username, ipAddress, userAgent string, success bool) {
	s.logEvent(AuditEvent{
		Action: "token_refresh", Subject: username, Success: success,
		IPAddress: ipAddress, UserAgent: userAgent,
	})
}

func (s *AuditService) logEvent(event AuditEvent) {
	if !s.enabled {
		return
	}

	device := utils.ParseUserAgent(event.UserAgent)
	fields := logrus.Fields{
		"action":      event.Action,
		"subject":     event.Subject,
		"success":     event.Success,
		"ip_address":  event.IPAddress,
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
	}
	if event.Reason != "" {
		fields["reason"] = event.Reason
	}
	for k, v := range event.Details {
		fields[k] = v
	}

	entry := s.logger.WithFields(fields)
	if event.Success {
		entry.Info("Audit event")
	} else {
		entry.Warn("Audit event")
	}
}
