package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender delivers password-reset codes to a user
type Sender interface {
	SendOTP(ctx context.Context, recipient, code string, expiresAt time.Time) error
	GetName() string
}

// LogSender writes reset codes to the application log instead of delivering them
type LogSender struct {
	logger logrus.FieldLogger
}

// NewLogSender creates a sender backed by the given logger
func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{logger: logger}
}

// SendOTP implements Sender
func (s *LogSender) SendOTP(ctx context.Context, recipient, code string, expiresAt time.Time) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	s.logger.WithFields(logrus.Fields{
		"recipient":  recipient,
		"otp":        mask(code),
		"expires_at": expiresAt.Format(time.RFC3339),
	}).Info("Password reset code issued")

	return nil
}

// GetName implements Sender
func (s *LogSender) GetName() string {
	return "log"
}

// mask hides all but the last two digits of a code
func mask(code string) string {
	if len(code) <= 2 {
		return "**"
	}
	masked := make([]byte, len(code))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(code)-2:], code[len(code)-2:])
	return string(masked)
}
