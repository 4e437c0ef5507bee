package services

import (
	"context"
	"fmt"

	"shift-booking-backend/internal/models"
	"shift-booking-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// Transactor runs a function inside one database transaction
type Transactor interface {
	WithTx(ctx context.Context, fn func(r *repository.Repositories) error) error
}

// PhotoURLSigner signs read URLs for stored photos
type PhotoURLSigner interface {
	PhotoURL(ctx context.Context, key *string) (*string, error)
}

// BookingService records shift check-ins and check-outs
type BookingService struct {
	store  Transactor
	photos PhotoURLSigner
}

// NewBookingService creates a new booking service
func NewBookingService(store Transactor, photos PhotoURLSigner) *BookingService {
	return &BookingService{
		store:  store,
		photos: photos,
	}
}

// CreateBooking validates raw, then writes the optional photo and the
// booking in a single transaction. Validation failures are returned as
// *ValidationError before any transaction is opened. A failure to sign the
// photo URL after commit only leaves photo_url empty.
func (s *BookingService) CreateBooking(ctx context.Context, raw map[string]any) (*models.BookingView, error) {
	input, err := ParseCreateBookingInput(raw)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ShiftID: input.ShiftID,
		Type:    input.Type,
		Lat:     input.Lat,
		Lng:     input.Lng,
	}
	if input.TakenAt != nil {
		booking.CapturedAt = *input.TakenAt
	}

	err = s.store.WithTx(ctx, func(r *repository.Repositories) error {
		if input.PhotoKey != "" {
			photo := &models.Photo{S3Key: input.PhotoKey}
			if err := r.Photos.Create(ctx, photo); err != nil {
				return err
			}
			booking.PhotoID = &photo.ID
		}
		return r.Bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	view := &models.BookingView{Booking: *booking}
	if booking.PhotoID == nil {
		return view, nil
	}

	photoURL, err := s.photos.PhotoURL(ctx, &input.PhotoKey)
	if err != nil {
		log.Warn().
			Err(err).
			Int64("booking_id", booking.ID).
			Str("photo_key", input.PhotoKey).
			Msg("Failed to sign photo URL, returning booking without it")
		return view, nil
	}
	view.PhotoURL = photoURL

	return view, nil
}
