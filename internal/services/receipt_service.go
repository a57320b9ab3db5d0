package services

import (
	"context"
	"fmt"

	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/skip2/go-qrcode"
)

// ReceiptQRSize is the edge length in pixels of generated receipt QR codes
const ReceiptQRSize = 256

// ReceiptService renders booking receipts
type ReceiptService struct {
	bookings *BookingService
	clock    clock.Clock
}

// NewReceiptService creates a new receipt service
func NewReceiptService(bookings *BookingService, c clock.Clock) *ReceiptService {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &ReceiptService{bookings: bookings, clock: c}
}

// ReceiptReference is the printable reference encoded in the receipt QR code
func ReceiptReference(details *models.BookingDetails) string {
	return fmt.Sprintf("EVZ-%d-%s", details.BookingID, details.Status)
}

// Get returns the structured receipt of a booking
func (s *ReceiptService) Get(ctx context.Context, bookingID int64) (*models.Receipt, error) {
	details, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &models.Receipt{
		Reference: ReceiptReference(details),
		Booking:   *details,
		IssuedAt:  s.clock.Now(),
	}, nil
}

// QRCode returns a PNG QR code of the booking's receipt reference
func (s *ReceiptService) QRCode(ctx context.Context, bookingID int64) ([]byte, error) {
	details, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(ReceiptReference(details), qrcode.Medium, ReceiptQRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt QR code: %w", err)
	}
	return png, nil
}
