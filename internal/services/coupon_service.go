package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// CouponService manages discount coupons and applies them at payment time
type CouponService struct {
	coupons *database.CouponRepository
	logger  logrus.FieldLogger
}

// NewCouponService creates a new coupon service
func NewCouponService(coupons *database.CouponRepository, logger logrus.FieldLogger) *CouponService {
	return &CouponService{coupons: coupons, logger: logger}
}

// Lookup returns the newest coupon matching code, or a validation error if none exists
func (s *CouponService) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validationError("coupon code is required")
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, persistenceError(err, "failed to look up coupon")
	}
	if coupon == nil {
		return nil, validationError("coupon %q is not valid", code)
	}
	return coupon, nil
}

// Apply returns basePrice discounted by the coupon, rounded to two decimals
func (s *CouponService) Apply(coupon *models.Coupon, basePrice float64, now time.Time) (float64, error) {
	if now.After(coupon.ExpiresAt) {
		return 0, couponExpiredError(coupon.Code)
	}
	return roundCents(basePrice * (1 - coupon.DiscountPercent/100)), nil
}

// Create stores a new coupon. expiresAt is a YYYY-MM-DD day and the coupon stays valid until its end.
func (s *CouponService) Create(ctx context.Context, req models.CreateCouponRequest) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, validationError("coupon code is required")
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, validationError("discount percent must be between 0 and 100")
	}
	if req.UsageLimit < 0 {
		return nil, validationError("usage limit cannot be negative")
	}
	expiresAt, err := validator.EndOfDay(req.ExpiresAt)
	if err != nil {
		return nil, validationError("invalid expiry date: %s", err.Error())
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = models.RoleAdmin
	}

	coupon := &models.Coupon{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		UsageLimit:      req.UsageLimit,
		ExpiresAt:       expiresAt,
		CreatedBy:       createdBy,
	}

	id, err := s.coupons.CreateCoupon(ctx, coupon)
	if err != nil {
		return nil, persistenceError(err, "failed to create coupon")
	}
	coupon.ID = id

	s.logger.WithFields(logrus.Fields{
		"coupon_id": id,
		"code":      code,
		"discount":  req.DiscountPercent,
	}).Info("Coupon created")

	return coupon, nil
}

// List returns every coupon, newest first
func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.coupons.ListCoupons(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list coupons")
	}
	return coupons, nil
}

// Delete removes a coupon by id
func (s *CouponService) Delete(ctx context.Context, id int64) error {
	n, err := s.coupons.DeleteCoupon(ctx, id)
	if err != nil {
		return persistenceError(err, "failed to delete coupon")
	}
	if n == 0 {
		return notFoundError("coupon %d not found", id)
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
