package repository

import (
	"context"
	"fmt"
	"time"

	"shift-booking-backend/internal/models"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db DBTX
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking and fills in its store-assigned ID. A zero
// CapturedAt is replaced by the database time of the write.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (shift_id, type, lat, lng, photo_id, captured_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, captured_at
	`
	var capturedAt *time.Time
	if !booking.CapturedAt.IsZero() {
		capturedAt = &booking.CapturedAt
	}

	err := r.db.QueryRow(ctx, query,
		booking.ShiftID, string(booking.Type), booking.Lat, booking.Lng, booking.PhotoID, capturedAt,
	).Scan(&booking.ID, &booking.CapturedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", classify(err))
	}
	return nil
}
