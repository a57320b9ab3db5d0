package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/eventzone/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	// OTPLength is the length of the OTP code
	OTPLength = 6

	// DefaultOTPExpiry is how long a reset code stays valid when not configured
	DefaultOTPExpiry = 5 * time.Minute

	otpStoreAttempts = 3
)

// IssuedOTP is the result of issuing a reset code
type IssuedOTP struct {
	Code      string
	ExpiresAt time.Time
	TTL       time.Duration
	Email     string
}

// OTPService issues and validates password-reset codes
type OTPService struct {
	db         database.DB
	users      *database.UserRepository
	expiry     time.Duration
	bcryptCost int
	clock      clock.Clock
	logger     logrus.FieldLogger
}

// NewOTPService creates a new OTP service
func NewOTPService(db database.DB, users *database.UserRepository, expiry time.Duration, bcryptCost int, c clock.Clock, logger logrus.FieldLogger) *OTPService {
	if expiry <= 0 {
		expiry = DefaultOTPExpiry
	}
	if c == nil {
		c = clock.NewRealClock()
	}
	return &OTPService{
		db:         db,
		users:      users,
		expiry:     expiry,
		bcryptCost: bcryptCost,
		clock:      c,
		logger:     logger,
	}
}

// Issue replaces any pending code for identifier with a fresh one
func (s *OTPService) Issue(ctx context.Context, identifier string) (*IssuedOTP, error) {
	identifier, err := validator.NormalizeIdentifier(identifier)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		return nil, persistenceError(err, "failed to look up user")
	}
	if user == nil {
		return nil, notFoundError("no account matches %q", identifier)
	}

	code, err := generateRandomOTP()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate OTP")
	}
	expiresAt := s.clock.Now().Add(s.expiry)

	// A concurrent Issue for the same identifier may insert between the delete and the insert
	for attempt := 1; ; attempt++ {
		err = s.replaceToken(ctx, identifier, code, expiresAt)
		if err == nil {
			break
		}
		if !database.IsUniqueViolation(err) {
			return nil, persistenceError(err, "failed to store OTP")
		}
		if attempt == otpStoreAttempts {
			return nil, conflictError("another reset code request for this account is in progress, retry shortly")
		}
		s.logger.WithField("attempt", attempt).Debug("Concurrent reset code request, replacing token again")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"expires_at": expiresAt,
	}).Info("Password reset code issued")

	return &IssuedOTP{Code: code, ExpiresAt: expiresAt, TTL: s.expiry, Email: user.Email}, nil
}

// Validate checks code against the pending token. A stale token is deleted. Success does not consume.
func (s *OTPService) Validate(ctx context.Context, identifier, code string) error {
	identifier = strings.TrimSpace(identifier)

	token, err := s.getToken(ctx, identifier)
	if err != nil {
		return persistenceError(err, "failed to load OTP")
	}
	if token == nil {
		return invalidTokenError("invalid or unknown code")
	}

	if s.clock.Now().After(token.ExpiresAt) {
		if err := s.Consume(ctx, identifier); err != nil {
			s.logger.WithError(err).Warn("Failed to delete expired OTP")
		}
		return expiredError("code has expired, request a new one")
	}

	if !strings.EqualFold(strings.TrimSpace(token.OTP), strings.TrimSpace(code)) {
		return invalidTokenError("invalid or unknown code")
	}

	return nil
}

// Consume deletes the pending token for identifier
func (s *OTPService) Consume(ctx context.Context, identifier string) error {
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		_, err := conn.ExecContext(ctx, `DELETE FROM password_otps WHERE user_input = $1`, strings.TrimSpace(identifier))
		return err
	})
	if err != nil {
		return persistenceError(err, "failed to consume OTP")
	}
	return nil
}

// Reset validates the code, stores the new password hash and consumes the code
func (s *OTPService) Reset(ctx context.Context, req models.ResetPasswordRequest) error {
	identifier, err := validator.NormalizeIdentifier(req.UserInput)
	if err != nil {
		return validationError("%s", err.Error())
	}
	if err := validator.ValidatePassword(req.NewPassword); err != nil {
		return validationError("%s", err.Error())
	}

	if err := s.Validate(ctx, identifier, req.OTP); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	n, err := s.users.UpdatePasswordByIdentifier(ctx, identifier, string(hash))
	if err != nil {
		return persistenceError(err, "failed to reset password")
	}
	if n == 0 {
		return notFoundError("no account matches %q", identifier)
	}

	if err := s.Consume(ctx, identifier); err != nil {
		return err
	}

	s.logger.WithField("identifier", identifier).Info("Password reset completed")
	return nil
}

// replaceToken deletes any pending token for identifier and stores the new one
func (s *OTPService) replaceToken(ctx context.Context, identifier, code string, expiresAt time.Time) error {
	return s.db.WithConn(ctx, func(conn database.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM password_otps WHERE user_input = $1`, identifier); err != nil {
			return fmt.Errorf("failed to invalidate existing OTP: %w", err)
		}
		_, err := conn.ExecContext(ctx,
			`INSERT INTO password_otps (user_input, otp, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
			identifier, code, expiresAt, s.clock.Now())
		return err
	})
}

// CleanupExpired removes every token past its expiry
func (s *OTPService) CleanupExpired(ctx context.Context) (int64, error) {
	var removed int64
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM password_otps WHERE expires_at < $1`, s.clock.Now())
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, persistenceError(err, "failed to cleanup expired OTPs")
	}
	return removed, nil
}

func (s *OTPService) getToken(ctx context.Context, identifier string) (*models.PasswordOTP, error) {
	query := `
		SELECT user_input, otp, expires_at, created_at
		FROM password_otps
		WHERE user_input = $1
	`

	var token models.PasswordOTP
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		return conn.GetContext(ctx, &token, query, identifier)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// generateRandomOTP generates a cryptographically secure random 6-digit OTP
func generateRandomOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}
