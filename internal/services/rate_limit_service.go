package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/pkg/clock"
)

// Identifier types stored in otp_rate_limits
const (
	rateLimitIdentifier = "identifier"
	rateLimitIP         = "ip"
	rateLimitReset      = "reset"
	rateLimitResetIP    = "reset_ip"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxIdentifierRequests int           // Max reset codes per username or email
	IdentifierWindow      time.Duration // Time window for the identifier limit
	MaxIPRequests         int           // Max reset codes per client IP
	IPWindow              time.Duration // Time window for the IP limit

	MaxFailedResets   int           // Max wrong or expired codes per username or email
	FailedResetWindow time.Duration // Time window for the failed reset limit
	MaxFailedResetsIP int           // Max wrong or expired codes per client IP
	FailedResetIPWin  time.Duration // Time window for the per-IP failed reset limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxIdentifierRequests: 3,
		IdentifierWindow:      10 * time.Minute,
		MaxIPRequests:         10,
		IPWindow:              time.Hour,
		MaxFailedResets:       5,
		FailedResetWindow:     15 * time.Minute,
		MaxFailedResetsIP:     20,
		FailedResetIPWin:      time.Hour,
	}
}

// RateLimitError carries the moment the caller may try again
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // identifier_type of the exhausted budget
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// RateLimitService throttles password-reset code requests
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
	clock  clock.Clock
}

// NewRateLimitService creates a new rate limit service. Zero limits fall back to the defaults.
func NewRateLimitService(db database.DB, config RateLimitConfig, c clock.Clock) *RateLimitService {
	defaults := DefaultRateLimitConfig()
	if config.MaxIdentifierRequests <= 0 || config.IdentifierWindow <= 0 {
		config.MaxIdentifierRequests, config.IdentifierWindow = defaults.MaxIdentifierRequests, defaults.IdentifierWindow
	}
	if config.MaxIPRequests <= 0 || config.IPWindow <= 0 {
		config.MaxIPRequests, config.IPWindow = defaults.MaxIPRequests, defaults.IPWindow
	}
	if config.MaxFailedResets <= 0 || config.FailedResetWindow <= 0 {
		config.MaxFailedResets, config.FailedResetWindow = defaults.MaxFailedResets, defaults.FailedResetWindow
	}
	if config.MaxFailedResetsIP <= 0 || config.FailedResetIPWin <= 0 {
		config.MaxFailedResetsIP, config.FailedResetIPWin = defaults.MaxFailedResetsIP, defaults.FailedResetIPWin
	}
	if c == nil {
		c = clock.NewRealClock()
	}
	return &RateLimitService{db: db, config: config, clock: c}
}

type requestWindow struct {
	Count        int        `db:"request_count"`
	FirstRequest *time.Time `db:"first_request"`
}

type limitCheck struct {
	value, kind string
	max         int
	window      time.Duration
	message     string
}

// CheckOTPRateLimit fails with a RateLimitError once identifier or ip used up its window
func (s *RateLimitService) CheckOTPRateLimit(ctx context.Context, identifier, ip string) error {
	return s.check(ctx, []limitCheck{
		{normalizeRateKey(identifier), rateLimitIdentifier, s.config.MaxIdentifierRequests, s.config.IdentifierWindow, "Too many reset codes requested for this account"},
		{strings.TrimSpace(ip), rateLimitIP, s.config.MaxIPRequests, s.config.IPWindow, "Too many reset codes requested from this IP address"},
	})
}

// CheckResetAttempts fails with a RateLimitError once identifier or ip made too many failed resets
func (s *RateLimitService) CheckResetAttempts(ctx context.Context, identifier, ip string) error {
	return s.check(ctx, []limitCheck{
		{normalizeRateKey(identifier), rateLimitReset, s.config.MaxFailedResets, s.config.FailedResetWindow, "Too many failed reset attempts for this account"},
		{strings.TrimSpace(ip), rateLimitResetIP, s.config.MaxFailedResetsIP, s.config.FailedResetIPWin, "Too many failed reset attempts from this IP address"},
	})
}

func (s *RateLimitService) check(ctx context.Context, checks []limitCheck) error {
	for _, check := range checks {
		if check.value == "" {
			continue
		}
		window, err := s.getRequestWindow(ctx, check.value, check.kind, check.window)
		if err != nil {
			return persistenceError(err, fmt.Sprintf("failed to check %s rate limit", check.kind))
		}
		if window.Count < check.max {
			continue
		}

		retryAfter := s.clock.Now().Add(check.window)
		if window.FirstRequest != nil {
			retryAfter = window.FirstRequest.Add(check.window)
		}
		return errors.Mark(&RateLimitError{
			Message:    fmt.Sprintf("%s. Please try again after %s", check.message, retryAfter.UTC().Format("15:04:05")),
			RetryAfter: retryAfter,
			Type:       check.kind,
		}, ErrRateLimited)
	}

	return nil
}

func (s *RateLimitService) getRequestWindow(ctx context.Context, value, kind string, window time.Duration) (requestWindow, error) {
	query := `
		SELECT COUNT(*) AS request_count, MIN(created_at) AS first_request
		FROM otp_rate_limits
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var result requestWindow
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		return conn.GetContext(ctx, &result, query, value, kind, s.clock.Now().Add(-window))
	})
	return result, err
}

// RecordOTPRequest counts one code request against identifier and ip
func (s *RateLimitService) RecordOTPRequest(ctx context.Context, identifier, ip string) error {
	if err := s.record(ctx, identifier, ip, rateLimitIdentifier, rateLimitIP); err != nil {
		return persistenceError(err, "failed to record OTP request")
	}
	return nil
}

// RecordFailedReset counts one rejected reset code against identifier and ip
func (s *RateLimitService) RecordFailedReset(ctx context.Context, identifier, ip string) error {
	if err := s.record(ctx, identifier, ip, rateLimitReset, rateLimitResetIP); err != nil {
		return persistenceError(err, "failed to record failed reset")
	}
	return nil
}

func (s *RateLimitService) record(ctx context.Context, identifier, ip, identifierKind, ipKind string) error {
	now := s.clock.Now()
	query := `INSERT INTO otp_rate_limits (identifier, identifier_type, created_at) VALUES ($1, $2, $3)`

	return s.db.WithConn(ctx, func(conn database.Conn) error {
		if key := normalizeRateKey(identifier); key != "" {
			if _, err := conn.ExecContext(ctx, query, key, identifierKind, now); err != nil {
				return err
			}
		}
		if ip = strings.TrimSpace(ip); ip != "" {
			if _, err := conn.ExecContext(ctx, query, ip, ipKind, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// CleanupExpired removes records older than the longest window
func (s *RateLimitService) CleanupExpired(ctx context.Context) (int64, error) {
	maxWindow := s.config.IPWindow
	for _, window := range []time.Duration{s.config.IdentifierWindow, s.config.FailedResetWindow, s.config.FailedResetIPWin} {
		if window > maxWindow {
			maxWindow = window
		}
	}

	var removed int64
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		result, err := conn.ExecContext(ctx, `DELETE FROM otp_rate_limits WHERE created_at < $1`, s.clock.Now().Add(-maxWindow))
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, persistenceError(err, "failed to cleanup rate limits")
	}
	return removed, nil
}

// normalizeRateKey makes "Alice" and " alice " share one budget
func normalizeRateKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
