package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eventzone/booking-backend/internal/models"
)

// bookingDetailsSelect is shared by every joined booking query so the scan target never drifts
const bookingDetailsSelect = `
	SELECT
		b.id AS booking_id,
		b.user_id,
		b.event_id,
		u.username,
		u.fullname AS user_name,
		u.email AS user_email,
		e.name AS event_name,
		e.event_date,
		e.city,
		e.venue,
		b.plan,
		b.guests,
		b.price,
		b.status,
		b.booking_date,
		b.payment_date,
		b.coupon_code
	FROM bookings b
	JOIN users u ON b.user_id = u.id
	JOIN events e ON b.event_id = e.id
`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking inserts a booking and returns its id
func (r *BookingRepository) CreateBooking(ctx context.Context, b *models.Booking) (int64, error) {
	query := `
		INSERT INTO bookings (user_id, event_id, plan, guests, price, base_price, status, booking_date)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &id, query,
			b.UserID, b.EventID, b.Plan, b.Guests, b.Price, string(b.Status), b.BookingDate)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create booking: %w", err)
	}

	return id, nil
}

// GetBookingByID returns the raw booking row, or nil if it does not exist
func (r *BookingRepository) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `
		SELECT id, user_id, event_id, plan, guests, price, COALESCE(base_price, price) AS base_price,
			status, booking_date, payment_date, coupon_code
		FROM bookings
		WHERE id = $1
	`

	var booking models.Booking
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &booking, query, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// GetBookingDetails returns the joined view of one booking, or nil if it does not exist
func (r *BookingRepository) GetBookingDetails(ctx context.Context, id int64) (*models.BookingDetails, error) {
	query := bookingDetailsSelect + ` WHERE b.id = $1`

	var details models.BookingDetails
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &details, query, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}

	return &details, nil
}

// UpdateStatus sets the status of a booking and returns the rows affected
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status models.BookingStatus) (int64, error) {
	return execAffected(ctx, r.db, "booking status update",
		`UPDATE bookings SET status = $1 WHERE id = $2`, string(status), id)
}

// MarkPaid records a payment on a booking
func (r *BookingRepository) MarkPaid(ctx context.Context, id int64, price float64, couponCode *string, paidAt time.Time) (int64, error) {
	return execAffected(ctx, r.db, "booking payment",
		`UPDATE bookings SET status = $1, price = $2, coupon_code = $3, payment_date = $4 WHERE id = $5`, string(models.BookingStatusPaid), price, couponCode, paidAt, id)
}

// UpdateDetails edits the plan, guest count and booking date
func (r *BookingRepository) UpdateDetails(ctx context.Context, id int64, bookingDate time.Time, plan string, guests int) (int64, error) {
	return execAffected(ctx, r.db, "booking update",
		`UPDATE bookings SET plan = $1, guests = $2, booking_date = $3 WHERE id = $4`, plan, guests, bookingDate, id)
}

// DeleteBooking physically removes a booking
func (r *BookingRepository) DeleteBooking(ctx context.Context, id int64) (int64, error) {
	return execAffected(ctx, r.db, "booking delete",
		`DELETE FROM bookings WHERE id = $1`, id)
}

// ListByUserID returns a user's bookings, newest first
func (r *BookingRepository) ListByUserID(ctx context.Context, userID int64) ([]models.BookingDetails, error) {
	return r.list(ctx, bookingDetailsSelect+` WHERE b.user_id = $1 ORDER BY b.booking_date DESC`, userID)
}

// ListByUsername returns the bookings of the user with the given username, newest first
func (r *BookingRepository) ListByUsername(ctx context.Context, username string) ([]models.BookingDetails, error) {
	return r.list(ctx, bookingDetailsSelect+` WHERE u.username = $1 ORDER BY b.booking_date DESC`, normalize(username))
}

// ListByStatus returns every booking in the given state, newest first
func (r *BookingRepository) ListByStatus(ctx context.Context, status models.BookingStatus) ([]models.BookingDetails, error) {
	return r.list(ctx, bookingDetailsSelect+` WHERE b.status = $1 ORDER BY b.booking_date DESC`, string(status))
}

// ListAll returns every booking, newest first
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.BookingDetails, error) {
	return r.list(ctx, bookingDetailsSelect+` ORDER BY b.booking_date DESC`)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.BookingDetails, error) {
	bookings := []models.BookingDetails{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &bookings, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
