package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	bookingRowColumns = []string{
		"id", "user_id", "event_id", "plan", "guests", "price", "base_price", "status", "booking_date", "payment_date", "coupon_code",
	}
	bookingDetailColumns = []string{
		"booking_id", "user_id", "event_id", "username", "user_name", "user_email",
		"event_name", "event_date", "city", "venue", "plan", "guests", "price",
		"status", "booking_date", "payment_date", "coupon_code",
	}
	couponRowColumns = []string{
		"id", "code", "discount_percent", "usage_limit", "expires_at", "created_by", "created_at",
	}
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishBookingEvent(ctx context.Context, event models.BookingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fakeLocker struct {
	held     map[int64]string
	lockErr  error
	unlocked int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[int64]string)}
}

func (l *fakeLocker) Lock(_ context.Context, id int64, owner string) (bool, error) {
	if l.lockErr != nil {
		return false, l.lockErr
	}
	if _, ok := l.held[id]; ok {
		return false, nil
	}
	l.held[id] = owner
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, id int64, owner string) error {
	if l.held[id] == owner {
		delete(l.held, id)
		l.unlocked++
	}
	return nil
}

type bookingFixture struct {
	service *BookingService
	mock    sqlmock.Sqlmock
	clock   *clock.MockClock
	hook    *test.Hook
}

func setupBookingTest(t *testing.T, opts ...BookingServiceOption) *bookingFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	postgresDB := &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	mockClock := clock.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	coupons := NewCouponService(database.NewCouponRepository(postgresDB), logger)

	opts = append([]BookingServiceOption{WithClock(mockClock)}, opts...)
	service := NewBookingService(database.NewBookingRepository(postgresDB), coupons, logger, opts...)

	return &bookingFixture{service: service, mock: sqlMock, clock: mockClock, hook: hook}
}

func (f *bookingFixture) expectBookingRow(id int64, price float64, status models.BookingStatus) {
	f.mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow(id, 7, 3, "Gold", 20, price, price, string(status), f.clock.Now(), nil, nil))
}

func (f *bookingFixture) expectPaidRow(id int64, price, basePrice float64, coupon string) {
	f.mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow(id, 7, 3, "Gold", 20, price, basePrice, "PAID", f.clock.Now(), f.clock.Now(), coupon))
}

func (f *bookingFixture) expectCoupon(code string, percent float64, expiresAt time.Time) {
	f.mock.ExpectQuery(`FROM coupons`).
		WithArgs(code).
		WillReturnRows(sqlmock.NewRows(couponRowColumns).
			AddRow(1, code, percent, 100, expiresAt, "admin", f.clock.Now().Add(-48*time.Hour)))
}

func (f *bookingFixture) expectDetails(id int64, price float64, status models.BookingStatus, coupon interface{}) {
	now := f.clock.Now()
	f.mock.ExpectQuery(`FROM bookings b`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(bookingDetailColumns).AddRow(
			id, 7, 3, "alice", "Alice", "alice@example.com",
			"Concert", now, "Guntur", "Main Hall", "Gold", 20, price,
			string(status), now, now, coupon,
		))
}

func TestBookingLifecycle_CouponScenario(t *testing.T) {
	publisher := new(mockPublisher)
	publisher.On("PublishBookingEvent", mock.Anything, mock.Anything).Return(nil)
	f := setupBookingTest(t, WithEventPublisher(publisher))
	ctx := context.Background()

	f.mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(7, 3, "Gold", 20, 5000.0, "CONFIRMED", f.clock.Now()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))

	id, err := f.service.Create(ctx, models.CreateBookingRequest{UserID: 7, EventID: 3, Plan: "Gold", Price: 5000, Guests: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)

	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("AGREED", 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, f.service.Agree(ctx, 101))

	f.expectBookingRow(101, 5000, models.BookingStatusAgreed)
	f.expectCoupon("SAVE10", 10, f.clock.Now().Add(24*time.Hour))
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("PAID", 4500.0, "SAVE10", f.clock.Now(), 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDetails(101, 4500, models.BookingStatusPaid, "SAVE10")

	details, err := f.service.Pay(ctx, models.PayBookingRequest{ID: 101, Price: 4500, Coupon: "SAVE10"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaid, details.Status)
	assert.Equal(t, 4500.0, details.Price)
	require.NotNil(t, details.PaymentDate)
	require.NotNil(t, details.CouponCode)
	assert.Equal(t, "SAVE10", *details.CouponCode)

	assert.NoError(t, f.mock.ExpectationsWereMet())

	var types []string
	for _, call := range publisher.Calls {
		types = append(types, call.Arguments.Get(1).(models.BookingEvent).Type)
	}
	assert.Equal(t, []string{models.BookingEventCreated, models.BookingEventAgreed, models.BookingEventPaid}, types)
}

func TestPay_RepeatedCouponPaymentDiscountsOnce(t *testing.T) {
	f := setupBookingTest(t)
	ctx := context.Background()

	f.expectBookingRow(101, 5000, models.BookingStatusAgreed)
	f.expectCoupon("SAVE10", 10, f.clock.Now().Add(24*time.Hour))
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("PAID", 4500.0, "SAVE10", f.clock.Now(), 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDetails(101, 4500, models.BookingStatusPaid, "SAVE10")

	first, err := f.service.Pay(ctx, models.PayBookingRequest{ID: 101, Price: 4500, Coupon: "SAVE10"})
	require.NoError(t, err)
	assert.Equal(t, 4500.0, first.Price)

	// The stored price is now discounted; the base price is not
	f.expectPaidRow(101, 4500, 5000, "SAVE10")
	f.expectCoupon("SAVE10", 10, f.clock.Now().Add(24*time.Hour))
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("PAID", 4500.0, "SAVE10", f.clock.Now(), 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDetails(101, 4500, models.BookingStatusPaid, "SAVE10")

	second, err := f.service.Pay(ctx, models.PayBookingRequest{ID: 101, Price: 4500, Coupon: "SAVE10"})
	require.NoError(t, err)
	assert.Equal(t, 4500.0, second.Price)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_PublishesAfterReleasingLock(t *testing.T) {
	locker := newFakeLocker()
	publisher := new(mockPublisher)
	var heldDuringPublish int
	publisher.On("PublishBookingEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			heldDuringPublish = len(locker.held)
			_, hasDeadline := args.Get(0).(context.Context).Deadline()
			assert.True(t, hasDeadline)
		}).
		Return(nil)
	f := setupBookingTest(t, WithBookingLocker(locker), WithEventPublisher(publisher))

	f.expectBookingRow(9, 300, models.BookingStatusAgreed)
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("PAID", 300.0, nil, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDetails(9, 300, models.BookingStatusPaid, nil)

	_, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 9, Price: 300})
	require.NoError(t, err)

	publisher.AssertNumberOfCalls(t, "PublishBookingEvent", 1)
	assert.Equal(t, 0, heldDuringPublish)
	assert.Equal(t, 1, locker.unlocked)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_PublishesAfterReleasingLock(t *testing.T) {
	locker := newFakeLocker()
	publisher := new(mockPublisher)
	var heldDuringPublish int
	publisher.On("PublishBookingEvent", mock.Anything, mock.MatchedBy(func(e models.BookingEvent) bool {
		return e.Type == models.BookingEventCancelled && e.Status == models.BookingStatusCancelled
	})).
		Run(func(mock.Arguments) { heldDuringPublish = len(locker.held) }).
		Return(nil)
	f := setupBookingTest(t, WithBookingLocker(locker), WithEventPublisher(publisher))

	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("CANCELLED", 101).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, f.service.Cancel(context.Background(), 101))
	publisher.AssertExpectations(t)
	assert.Equal(t, 0, heldDuringPublish)
}

func TestOwnerID(t *testing.T) {
	f := setupBookingTest(t)
	ctx := context.Background()

	f.expectBookingRow(101, 5000, models.BookingStatusConfirmed)
	owner, err := f.service.OwnerID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, int64(7), owner)

	f.mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))
	_, err = f.service.OwnerID(ctx, 404)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.service.OwnerID(ctx, 0)
	assert.True(t, errors.Is(err, ErrValidation))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_ServerComputesDiscount(t *testing.T) {
	f := setupBookingTest(t)

	f.expectBookingRow(55, 200, models.BookingStatusAgreed)
	f.mock.ExpectQuery(`FROM coupons`).
		WithArgs("half").
		WillReturnRows(sqlmock.NewRows(couponRowColumns).
			AddRow(2, "HALF", 50.0, 0, f.clock.Now().Add(time.Hour), "admin", f.clock.Now()))
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("PAID", 100.0, "HALF", sqlmock.AnyArg(), 55).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDetails(55, 100.0, models.BookingStatusPaid, "HALF")

	// Client claims an absurd price; the coupon arithmetic wins
	details, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 55, Price: 1, Coupon: "half"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, details.Price)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "price mismatch should be logged")
}

func TestPay_ExpiredCouponLeavesBookingUntouched(t *testing.T) {
	f := setupBookingTest(t)

	f.expectBookingRow(101, 5000, models.BookingStatusAgreed)
	f.expectCoupon("SAVE10", 10, f.clock.Now().Add(-time.Minute))

	_, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 101, Price: 4500, Coupon: "SAVE10"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouponExpired))

	// No UPDATE was expected, so any write would fail this check
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_UnknownCoupon(t *testing.T) {
	f := setupBookingTest(t)

	f.expectBookingRow(101, 5000, models.BookingStatusAgreed)
	f.mock.ExpectQuery(`FROM coupons`).WithArgs("BOGUS").WillReturnRows(sqlmock.NewRows(couponRowColumns))

	_, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 101, Price: 4500, Coupon: "BOGUS"})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_WithoutCouponPersistsCallerPrice(t *testing.T) {
	f := setupBookingTest(t)

	f.expectBookingRow(9, 300, models.BookingStatusAgreed)
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("PAID", 275.5, nil, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDetails(9, 275.5, models.BookingStatusPaid, nil)

	details, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 9, Price: 275.5})
	require.NoError(t, err)
	assert.Equal(t, 275.5, details.Price)
	assert.Nil(t, details.CouponCode)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_Validation(t *testing.T) {
	f := setupBookingTest(t)

	tests := []struct {
		name string
		req  models.PayBookingRequest
	}{
		{"missing id", models.PayBookingRequest{Price: 10}},
		{"zero price", models.PayBookingRequest{ID: 1}},
		{"negative price", models.PayBookingRequest{ID: 1, Price: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Pay(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_MissingBooking(t *testing.T) {
	f := setupBookingTest(t)

	f.mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	_, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 404, Price: 10})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_LockHeldIsConflict(t *testing.T) {
	locker := newFakeLocker()
	locker.held[101] = "someone-else"
	f := setupBookingTest(t, WithBookingLocker(locker))

	_, err := f.service.Pay(context.Background(), models.PayBookingRequest{ID: 101, Price: 10})
	assert.True(t, errors.Is(err, ErrConflict))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_ReleasesLockAndIsIdempotent(t *testing.T) {
	locker := newFakeLocker()
	f := setupBookingTest(t, WithBookingLocker(locker))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		f.mock.ExpectExec(`UPDATE bookings SET status`).
			WithArgs("CANCELLED", 101).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, f.service.Cancel(ctx, 101))
	}

	assert.Equal(t, 2, locker.unlocked)
	assert.Empty(t, locker.held)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreate_Validation(t *testing.T) {
	f := setupBookingTest(t)

	tests := []struct {
		name string
		req  models.CreateBookingRequest
	}{
		{"missing user", models.CreateBookingRequest{EventID: 3, Guests: 1}},
		{"missing event", models.CreateBookingRequest{UserID: 7, Guests: 1}},
		{"no guests", models.CreateBookingRequest{UserID: 7, EventID: 3}},
		{"negative price", models.CreateBookingRequest{UserID: 7, EventID: 3, Guests: 1, Price: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tt.req)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestCreate_UnknownUserIsNotFound(t *testing.T) {
	f := setupBookingTest(t)

	f.mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	_, err := f.service.Create(context.Background(), models.CreateBookingRequest{UserID: 7, EventID: 999, Guests: 1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAgree_NotFoundAndPermissive(t *testing.T) {
	f := setupBookingTest(t)
	ctx := context.Background()

	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("AGREED", 77).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, errors.Is(f.service.Agree(ctx, 77), ErrNotFound))

	// A cancelled booking can still be agreed to
	f.mock.ExpectExec(`UPDATE bookings SET status`).
		WithArgs("AGREED", 78).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, f.service.Agree(ctx, 78))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	f := setupBookingTest(t)
	ctx := context.Background()

	err := f.service.Update(ctx, models.UpdateBookingRequest{ID: 5, Date: "05/06/2025", Guests: 2})
	assert.True(t, errors.Is(err, ErrValidation))

	err = f.service.Update(ctx, models.UpdateBookingRequest{ID: 5, Date: "2025-06-05", Guests: 0})
	assert.True(t, errors.Is(err, ErrValidation))

	f.mock.ExpectExec(`UPDATE bookings SET plan`).
		WithArgs("Silver", 4, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, f.service.Update(ctx, models.UpdateBookingRequest{ID: 5, Date: "2025-06-05", Plan: " Silver ", Guests: 4}))

	f.mock.ExpectExec(`UPDATE bookings SET plan`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = f.service.Update(ctx, models.UpdateBookingRequest{ID: 6, Date: "2025-06-05", Guests: 1})
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete_PublishFailureDoesNotFail(t *testing.T) {
	publisher := new(mockPublisher)
	publisher.On("PublishBookingEvent", mock.Anything, mock.MatchedBy(func(e models.BookingEvent) bool {
		return e.Type == models.BookingEventDeleted && e.BookingID == 12
	})).Return(errors.New("broker down"))
	f := setupBookingTest(t, WithEventPublisher(publisher))

	f.mock.ExpectExec(`DELETE FROM bookings`).
		WithArgs(12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, f.service.Delete(context.Background(), 12))
	publisher.AssertExpectations(t)

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestListByStatus_RejectsUnknownStatus(t *testing.T) {
	f := setupBookingTest(t)

	_, err := f.service.ListByStatus(context.Background(), "SHIPPED")
	assert.True(t, errors.Is(err, ErrValidation))

	f.mock.ExpectQuery(`WHERE b.status = \$1`).
		WithArgs("PAID").
		WillReturnRows(sqlmock.NewRows(bookingDetailColumns))

	bookings, err := f.service.ListByStatus(context.Background(), "paid")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
