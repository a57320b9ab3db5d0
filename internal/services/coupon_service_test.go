package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCouponTest(t *testing.T) (*CouponService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	repo := database.NewCouponRepository(&database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")})
	return NewCouponService(repo, logger), mock
}

func TestCouponApply(t *testing.T) {
	service, _ := setupCouponTest(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		percent float64
		base    float64
		expires time.Time
		want    float64
		expired bool
	}{
		{"ten percent", 10, 5000, now.Add(time.Hour), 4500, false},
		{"rounds to cents", 15, 99.99, now.Add(time.Hour), 84.99, false},
		{"full discount", 100, 250, now.Add(time.Hour), 0, false},
		{"zero discount", 0, 250, now.Add(time.Hour), 250, false},
		{"valid at the exact expiry instant", 10, 100, now, 90, false},
		{"expired", 10, 100, now.Add(-time.Second), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := &models.Coupon{Code: "C", DiscountPercent: tt.percent, ExpiresAt: tt.expires}
			got, err := service.Apply(coupon, tt.base, now)
			if tt.expired {
				assert.True(t, errors.Is(err, ErrCouponExpired))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestCouponCreate(t *testing.T) {
	service, mock := setupCouponTest(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO coupons`).
			WithArgs("SAVE10", 10.0, 50, time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC), "admin").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		coupon, err := service.Create(ctx, models.CreateCouponRequest{
			Code: " save10 ", DiscountPercent: 10, UsageLimit: 50, ExpiresAt: "2025-12-31",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), coupon.ID)
		assert.Equal(t, "SAVE10", coupon.Code)
	})

	invalid := []struct {
		name string
		req  models.CreateCouponRequest
	}{
		{"missing code", models.CreateCouponRequest{ExpiresAt: "2025-12-31"}},
		{"discount above 100", models.CreateCouponRequest{Code: "X", DiscountPercent: 120, ExpiresAt: "2025-12-31"}},
		{"negative discount", models.CreateCouponRequest{Code: "X", DiscountPercent: -1, ExpiresAt: "2025-12-31"}},
		{"negative limit", models.CreateCouponRequest{Code: "X", UsageLimit: -1, ExpiresAt: "2025-12-31"}},
		{"bad date", models.CreateCouponRequest{Code: "X", ExpiresAt: "31/12/2025"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.req)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponDelete_NotFound(t *testing.T) {
	service, mock := setupCouponTest(t)

	mock.ExpectExec(`DELETE FROM coupons`).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.Delete(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
