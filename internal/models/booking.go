package models

import (
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusAgreed    BookingStatus = "AGREED"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// ParseBookingStatus accepts any casing and reports whether the status is known
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch status := BookingStatus(toUpper(s)); status {
	case BookingStatusConfirmed, BookingStatusAgreed, BookingStatusPaid, BookingStatusApproved, BookingStatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// Booking is a user's reservation for an event
type Booking struct {
	ID          int64         `json:"id" db:"id"`
	UserID      int64         `json:"user_id" db:"user_id"`
	EventID     int64         `json:"event_id" db:"event_id"`
	Plan        string        `json:"plan" db:"plan"`
	Guests      int           `json:"guests" db:"guests"`
	Price       float64       `json:"price" db:"price"`
	BasePrice   float64       `json:"base_price" db:"base_price"` // price before any coupon
	Status      BookingStatus `json:"status" db:"status"`
	BookingDate time.Time     `json:"booking_date" db:"booking_date"`
	PaymentDate *time.Time    `json:"payment_date,omitempty" db:"payment_date"`
	CouponCode  *string       `json:"coupon_code,omitempty" db:"coupon_code"`
}

// BookingDetails is the joined booking/user/event view returned by every booking query
type BookingDetails struct {
	BookingID    int64         `json:"booking_id" db:"booking_id"`
	UserID       int64         `json:"user_id" db:"user_id"`
	EventID      int64         `json:"event_id" db:"event_id"`
	Username     string        `json:"username" db:"username"`
	UserFullName string        `json:"user_name" db:"user_name"`
	UserEmail    string        `json:"user_email" db:"user_email"`
	EventName    string        `json:"event_name" db:"event_name"`
	EventDate    time.Time     `json:"event_date" db:"event_date"`
	City         string        `json:"city" db:"city"`
	Venue        string        `json:"venue" db:"venue"`
	Plan         string        `json:"plan" db:"plan"`
	Guests       int           `json:"guests" db:"guests"`
	Price        float64       `json:"price" db:"price"`
	Status       BookingStatus `json:"status" db:"status"`
	BookingDate  time.Time     `json:"booking_date" db:"booking_date"`
	PaymentDate  *time.Time    `json:"payment_date,omitempty" db:"payment_date"`
	CouponCode   *string       `json:"coupon_code,omitempty" db:"coupon_code"`
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	UserID  int64   `json:"userId"`
	EventID int64   `json:"eventId"`
	Plan    string  `json:"plan"`
	Price   float64 `json:"price"`
	Guests  int     `json:"guests"`
}

// PayBookingRequest represents a payment confirmation
type PayBookingRequest struct {
	ID     int64   `json:"id"`
	Price  float64 `json:"price"`
	Coupon string  `json:"coupon"`
}

// UpdateBookingRequest edits the mutable booking details
type UpdateBookingRequest struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Plan   string `json:"plan"`
	Guests int    `json:"guests"`
}

// BookingIDRequest carries a booking id in a JSON body
type BookingIDRequest struct {
	ID int64 `json:"id"`
}

// BookingEvent is published after every successful lifecycle write
type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  int64         `json:"booking_id"`
	Status     BookingStatus `json:"status,omitempty"`
	Price      *float64      `json:"price,omitempty"`
	CouponCode string        `json:"coupon_code,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Booking event types
const (
	BookingEventCreated   = "booking.created"
	BookingEventAgreed    = "booking.agreed"
	BookingEventPaid      = "booking.paid"
	BookingEventUpdated   = "booking.updated"
	BookingEventCancelled = "booking.cancelled"
	BookingEventApproved  = "booking.approved"
	BookingEventDeleted   = "booking.deleted"
)

// Receipt is the structured receipt view of a booking
type Receipt struct {
	Reference string         `json:"reference"`
	Booking   BookingDetails `json:"booking"`
	IssuedAt  time.Time      `json:"issued_at"`
}
