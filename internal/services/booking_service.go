package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/eventzone/booking-backend/pkg/validator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// eventPublishTimeout bounds how long a request waits on the event publisher
const eventPublishTimeout = 5 * time.Second

// BookingLocker serializes writers of a single booking across instances
type BookingLocker interface {
	Lock(ctx context.Context, bookingID int64, owner string) (bool, error)
	Unlock(ctx context.Context, bookingID int64, owner string) error
}

// EventPublisher receives booking lifecycle events after a successful write
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event models.BookingEvent) error
}

// BookingService owns the booking lifecycle and the price computation at payment
type BookingService struct {
	bookings  *database.BookingRepository
	coupons   *CouponService
	locker    BookingLocker
	publisher EventPublisher
	clock     clock.Clock
	logger    logrus.FieldLogger
}

// BookingServiceOption configures optional collaborators
type BookingServiceOption func(*BookingService)

// WithBookingLocker enables per-booking locking for Pay and Cancel
func WithBookingLocker(locker BookingLocker) BookingServiceOption {
	return func(s *BookingService) { s.locker = locker }
}

// WithEventPublisher enables lifecycle event publishing
func WithEventPublisher(publisher EventPublisher) BookingServiceOption {
	return func(s *BookingService) { s.publisher = publisher }
}

// WithClock overrides the time source
func WithClock(c clock.Clock) BookingServiceOption {
	return func(s *BookingService) { s.clock = c }
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings *database.BookingRepository,
	coupons *CouponService,
	logger logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		bookings: bookings,
		coupons:  coupons,
		clock:    clock.NewRealClock(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books an event for a user and returns the new booking id
func (s *BookingService) Create(ctx context.Context, req models.CreateBookingRequest) (int64, error) {
	if req.UserID <= 0 || req.EventID <= 0 {
		return 0, validationError("userId and eventId are required")
	}
	if req.Guests < 1 {
		return 0, validationError("guests must be at least 1")
	}
	if req.Price < 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		return 0, validationError("price must be a non-negative number")
	}

	booking := &models.Booking{
		UserID:      req.UserID,
		EventID:     req.EventID,
		Plan:        strings.TrimSpace(req.Plan),
		Guests:      req.Guests,
		Price:       req.Price,
		Status:      models.BookingStatusConfirmed,
		BookingDate: s.clock.Now(),
	}

	id, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, notFoundError("user %d or event %d does not exist", req.UserID, req.EventID)
		}
		return 0, persistenceError(err, "failed to create booking")
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": id,
		"user_id":    req.UserID,
		"event_id":   req.EventID,
		"guests":     req.Guests,
	}).Info("Booking created")

	price := req.Price
	s.publish(ctx, models.BookingEvent{
		Type:      models.BookingEventCreated,
		BookingID: id,
		Status:    models.BookingStatusConfirmed,
		Price:     &price,
	})

	return id, nil
}

// Agree marks the booking's terms as accepted. Any prior state is accepted.
func (s *BookingService) Agree(ctx context.Context, bookingID int64) error {
	return s.setStatus(ctx, bookingID, models.BookingStatusAgreed, models.BookingEventAgreed)
}

// Approve records the admin acknowledgement of a booking
func (s *BookingService) Approve(ctx context.Context, bookingID int64) error {
	return s.setStatus(ctx, bookingID, models.BookingStatusApproved, models.BookingEventApproved)
}

// Cancel marks the booking CANCELLED. Cancelling twice is not an error.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64) error {
	if bookingID <= 0 {
		return validationError("booking id is required")
	}
	err := s.withLock(ctx, bookingID, func() error {
		return s.updateStatus(ctx, bookingID, models.BookingStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, models.BookingEvent{Type: models.BookingEventCancelled, BookingID: bookingID, Status: models.BookingStatusCancelled})
	return nil
}

func (s *BookingService) setStatus(ctx context.Context, bookingID int64, status models.BookingStatus, eventType string) error {
	if err := s.updateStatus(ctx, bookingID, status); err != nil {
		return err
	}
	s.publish(ctx, models.BookingEvent{Type: eventType, BookingID: bookingID, Status: status})
	return nil
}

func (s *BookingService) updateStatus(ctx context.Context, bookingID int64, status models.BookingStatus) error {
	if bookingID <= 0 {
		return validationError("booking id is required")
	}

	n, err := s.bookings.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		return persistenceError(err, "failed to update booking status")
	}
	if n == 0 {
		return notFoundError("booking %d not found", bookingID)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"status":     status,
	}).Info("Booking status changed")
	return nil
}

// Pay confirms payment. With a coupon the final price is computed from the booking's
// base price, so repeating a payment never discounts twice. Without one the caller's
// price is persisted.
func (s *BookingService) Pay(ctx context.Context, req models.PayBookingRequest) (*models.BookingDetails, error) {
	if req.ID <= 0 {
		return nil, validationError("booking id is required")
	}
	if !(req.Price > 0) || math.IsInf(req.Price, 0) {
		return nil, validationError("price must be greater than zero")
	}

	var (
		details *models.BookingDetails
		event   models.BookingEvent
	)
	err := s.withLock(ctx, req.ID, func() error {
		booking, err := s.bookings.GetBookingByID(ctx, req.ID)
		if err != nil {
			return persistenceError(err, "failed to load booking")
		}
		if booking == nil {
			return notFoundError("booking %d not found", req.ID)
		}

		now := s.clock.Now()
		finalPrice := req.Price
		var couponCode *string

		if code := strings.TrimSpace(req.Coupon); code != "" {
			coupon, err := s.coupons.Lookup(ctx, code)
			if err != nil {
				return err
			}
			finalPrice, err = s.coupons.Apply(coupon, booking.BasePrice, now)
			if err != nil {
				return err
			}
			if roundCents(req.Price) != finalPrice {
				s.logger.WithFields(logrus.Fields{
					"booking_id":   req.ID,
					"client_price": req.Price,
					"final_price":  finalPrice,
					"coupon":       coupon.Code,
				}).Warn("Client price differs from coupon price, using server computed price")
			}
			couponCode = &coupon.Code
		}

		n, err := s.bookings.MarkPaid(ctx, req.ID, finalPrice, couponCode, now)
		if err != nil {
			return persistenceError(err, "failed to record payment")
		}
		if n == 0 {
			return notFoundError("booking %d not found", req.ID)
		}

		details, err = s.bookings.GetBookingDetails(ctx, req.ID)
		if err != nil {
			return persistenceError(err, "failed to load paid booking")
		}
		if details == nil {
			return notFoundError("booking %d not found", req.ID)
		}

		event = models.BookingEvent{
			Type:      models.BookingEventPaid,
			BookingID: req.ID,
			Status:    models.BookingStatusPaid,
			Price:     &finalPrice,
		}
		if couponCode != nil {
			event.CouponCode = *couponCode
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Published outside the lock
	s.publish(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"booking_id": req.ID,
		"price":      details.Price,
	}).Info("Booking paid")

	return details, nil
}

// Update edits plan, guests and booking date. The status is left untouched.
func (s *BookingService) Update(ctx context.Context, req models.UpdateBookingRequest) error {
	if req.ID <= 0 {
		return validationError("booking id is required")
	}
	if req.Guests < 1 {
		return validationError("guests must be at least 1")
	}
	date, err := validator.ParseDate(req.Date)
	if err != nil {
		return validationError("invalid booking date %q: use YYYY-MM-DD", req.Date)
	}

	n, err := s.bookings.UpdateDetails(ctx, req.ID, date, strings.TrimSpace(req.Plan), req.Guests)
	if err != nil {
		return persistenceError(err, "failed to update booking")
	}
	if n == 0 {
		return notFoundError("booking %d not found", req.ID)
	}

	s.publish(ctx, models.BookingEvent{Type: models.BookingEventUpdated, BookingID: req.ID})
	return nil
}

// Delete physically removes a booking
func (s *BookingService) Delete(ctx context.Context, bookingID int64) error {
	if bookingID <= 0 {
		return validationError("booking id is required")
	}

	n, err := s.bookings.DeleteBooking(ctx, bookingID)
	if err != nil {
		return persistenceError(err, "failed to delete booking")
	}
	if n == 0 {
		return notFoundError("booking %d not found", bookingID)
	}

	s.logger.WithField("booking_id", bookingID).Info("Booking deleted")
	s.publish(ctx, models.BookingEvent{Type: models.BookingEventDeleted, BookingID: bookingID})
	return nil
}

// OwnerID returns the id of the user a booking belongs to
func (s *BookingService) OwnerID(ctx context.Context, bookingID int64) (int64, error) {
	if bookingID <= 0 {
		return 0, validationError("booking id is required")
	}
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return 0, persistenceError(err, "failed to load booking")
	}
	if booking == nil {
		return 0, notFoundError("booking %d not found", bookingID)
	}
	return booking.UserID, nil
}

// Get returns the joined view of one booking
func (s *BookingService) Get(ctx context.Context, bookingID int64) (*models.BookingDetails, error) {
	details, err := s.bookings.GetBookingDetails(ctx, bookingID)
	if err != nil {
		return nil, persistenceError(err, "failed to get booking")
	}
	if details == nil {
		return nil, notFoundError("booking %d not found", bookingID)
	}
	return details, nil
}

// ListByUser returns a user's bookings, newest first
func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]models.BookingDetails, error) {
	bookings, err := s.bookings.ListByUserID(ctx, userID)
	if err != nil {
		return nil, persistenceError(err, "failed to list bookings")
	}
	return bookings, nil
}

// ListByUsername returns the bookings of a username, newest first
func (s *BookingService) ListByUsername(ctx context.Context, username string) ([]models.BookingDetails, error) {
	if strings.TrimSpace(username) == "" {
		return nil, validationError("username is required")
	}
	bookings, err := s.bookings.ListByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError(err, "failed to list bookings")
	}
	return bookings, nil
}

// ListByStatus returns every booking in a status, newest first
func (s *BookingService) ListByStatus(ctx context.Context, status string) ([]models.BookingDetails, error) {
	parsed, ok := models.ParseBookingStatus(status)
	if !ok {
		return nil, validationError("unknown booking status %q", status)
	}
	bookings, err := s.bookings.ListByStatus(ctx, parsed)
	if err != nil {
		return nil, persistenceError(err, "failed to list bookings")
	}
	return bookings, nil
}

// ListAll returns every booking, newest first
func (s *BookingService) ListAll(ctx context.Context) ([]models.BookingDetails, error) {
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list bookings")
	}
	return bookings, nil
}

// withLock runs fn while holding the booking's lock. Without a locker fn runs directly.
func (s *BookingService) withLock(ctx context.Context, bookingID int64, fn func() error) error {
	if s.locker == nil {
		return fn()
	}

	owner := uuid.NewString()
	acquired, err := s.locker.Lock(ctx, bookingID, owner)
	if err != nil {
		return persistenceError(err, "failed to acquire booking lock")
	}
	if !acquired {
		return conflictError("booking %d is being modified by another request, retry shortly", bookingID)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), bookingID, owner); err != nil {
			s.logger.WithError(err).WithField("booking_id", bookingID).Warn("Failed to release booking lock")
		}
	}()

	return fn()
}

func (s *BookingService) publish(ctx context.Context, event models.BookingEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.clock.Now()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := s.publisher.PublishBookingEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id": event.BookingID,
			"type":       event.Type,
		}).Warn("Failed to publish booking event")
	}
}
