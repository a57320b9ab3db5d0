package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted from clients
const DateLayout = "2006-01-02"

var (
	// ErrEmptyIdentifier indicates a username/email was not supplied
	ErrEmptyIdentifier = errors.New("username or email is required")

	// ErrInvalidEmail indicates an email address is malformed
	ErrInvalidEmail = errors.New("email address is invalid")

	// ErrInvalidUsername indicates a username has disallowed characters or length
	ErrInvalidUsername = errors.New("username must be 3-32 characters of letters, digits, '.', '_' or '-'")

	// ErrWeakPassword indicates a password is too short
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrInvalidDate indicates a date is not in YYYY-MM-DD form
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrInvalidPhone indicates a phone number has the wrong shape
	ErrInvalidPhone = errors.New("phone number must contain 7 to 15 digits")

	// ErrInvalidOTP indicates a reset code is not six digits
	ErrInvalidOTP = errors.New("code must be 6 digits")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)
	digitsRegex   = regexp.MustCompile(`^\d+$`)
	otpRegex      = regexp.MustCompile(`^\d{6}$`)
)

// MinPasswordLength is the shortest password accepted at signup and reset
const MinPasswordLength = 6

// NormalizeIdentifier trims a username or email and rejects empty input
func NormalizeIdentifier(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ErrEmptyIdentifier
	}
	return identifier, nil
}

// ValidateEmail trims and checks an email address
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidateUsername trims and checks a username
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if !usernameRegex.MatchString(username) {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// ValidatePassword enforces the minimum password length
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// EndOfDay parses a YYYY-MM-DD date and returns the last instant of that UTC day
func EndOfDay(value string) (time.Time, error) {
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(24*time.Hour - time.Nanosecond), nil
}

// SanitizePhone strips common separators and checks the digit count
func SanitizePhone(phone string) (string, error) {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	sanitized := replacer.Replace(strings.TrimSpace(phone))
	sanitized = strings.TrimPrefix(sanitized, "+")

	if !digitsRegex.MatchString(sanitized) || len(sanitized) < 7 || len(sanitized) > 15 {
		return "", ErrInvalidPhone
	}
	return sanitized, nil
}

// IsOTPFormat reports whether code is exactly six digits after trimming
func IsOTPFormat(code string) bool {
	return otpRegex.MatchString(strings.TrimSpace(code))
}
