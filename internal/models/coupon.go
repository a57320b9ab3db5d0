package models

import "time"

// Coupon is a percentage discount code
type Coupon struct {
	ID              int64     `json:"id" db:"id"`
	Code            string    `json:"code" db:"code"`
	DiscountPercent float64   `json:"discount_percent" db:"discount_percent"`
	UsageLimit      int       `json:"usage_limit" db:"usage_limit"`
	ExpiresAt       time.Time `json:"expires_at" db:"expires_at"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CreateCouponRequest is the admin coupon form
type CreateCouponRequest struct {
	Code            string  `json:"code" binding:"required"`
	DiscountPercent float64 `json:"discountPercent"`
	UsageLimit      int     `json:"usageLimit"`
	ExpiresAt       string  `json:"expiresAt" binding:"required"`
	CreatedBy       string  `json:"createdBy"`
}
