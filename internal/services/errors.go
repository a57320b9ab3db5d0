package services

import (
	"github.com/cockroachdb/errors"
)

// Error categories. Concrete errors carry their own message and are marked
// with one of these so handlers can resolve the status with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrInvalidToken  = errors.New("invalid or unknown code")
	ErrExpired       = errors.New("code has expired")
	ErrCouponExpired = errors.New("coupon has expired")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limited")
	ErrPersistence   = errors.New("persistence failure")
)

func validationError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func notFoundError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

func conflictError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConflict)
}

func unauthorizedError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrUnauthorized)
}

// persistenceError wraps a storage failure with the operation that hit it
func persistenceError(err error, op string) error {
	return errors.Mark(errors.Wrapf(err, "%s", op), ErrPersistence)
}

// ErrorCategory returns the category sentinel err was marked with, or nil
func ErrorCategory(err error) error {
	for _, category := range []error{
		ErrValidation, ErrNotFound, ErrInvalidToken, ErrExpired,
		ErrCouponExpired, ErrConflict, ErrUnauthorized, ErrRateLimited, ErrPersistence,
	} {
		if errors.Is(err, category) {
			return category
		}
	}
	return nil
}

func couponExpiredError(code string) error {
	return errors.Mark(errors.Newf("coupon %q has expired", code), ErrCouponExpired)
}

func invalidTokenError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidToken)
}

func expiredError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrExpired)
}
