package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eventzone/booking-backend/internal/models"
)

const couponColumns = `id, code, discount_percent, usage_limit, expires_at, created_by, created_at`

// CouponRepository handles coupon database operations
type CouponRepository struct {
	db DB
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// CreateCoupon inserts a coupon and returns its id
func (r *CouponRepository) CreateCoupon(ctx context.Context, coupon *models.Coupon) (int64, error) {
	query := `
		INSERT INTO coupons (code, discount_percent, usage_limit, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &id, query,
			coupon.Code, coupon.DiscountPercent, coupon.UsageLimit, coupon.ExpiresAt, coupon.CreatedBy)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create coupon: %w", err)
	}
	return id, nil
}

// ListCoupons returns every coupon, newest first
func (r *CouponRepository) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	coupons := []models.Coupon{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &coupons, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC, id DESC`)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// FindByCode returns the newest coupon whose code matches case-insensitively, or nil
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE UPPER(code) = UPPER($1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var coupon models.Coupon
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &coupon, query, normalize(code))
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return &coupon, nil
}

// DeleteCoupon removes a coupon by id
func (r *CouponRepository) DeleteCoupon(ctx context.Context, id int64) (int64, error) {
	return execAffected(ctx, r.db, "coupon delete", `DELETE FROM coupons WHERE id = $1`, id)
}
