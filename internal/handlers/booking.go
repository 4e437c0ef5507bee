package handlers

import (
	"context"
	"errors"
	"net/http"

	"shift-booking-backend/internal/models"
	"shift-booking-backend/internal/repository"
	"shift-booking-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// BookingCreator creates bookings from raw request payloads
type BookingCreator interface {
	CreateBooking(ctx context.Context, raw map[string]any) (*models.BookingView, error)
}

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	bookingService BookingCreator
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService BookingCreator) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// CreateBookingResponse is the body of a successful POST /bookings
type CreateBookingResponse struct {
	OK      bool                `json:"ok"`
	Booking *models.BookingView `json:"booking"`
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := decodeObject(r, false)
	if err != nil {
		respondError(w, ErrorResponse{Error: codeInvalidJSON}, http.StatusBadRequest)
		return
	}

	booking, err := h.bookingService.CreateBooking(ctx, raw)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, ErrorResponse{Error: vErr.Code, Field: vErr.Field}, http.StatusBadRequest)
			return
		}
		if fkErr, ok := repository.ForeignKeyViolation(err); ok {
			log.Info().
				Str("constraint", fkErr.Constraint).
				Str("detail", fkErr.Detail).
				Msg("Booking rejected by foreign key")
			respondError(w, ErrorResponse{Error: codeForeignKeyViolation, Detail: fkErr.Detail}, http.StatusBadRequest)
			return
		}

		log.Error().
			Err(err).
			Msg("Failed to create booking")
		respondError(w, ErrorResponse{Error: codeServerError}, http.StatusInternalServerError)
		return
	}

	log.Info().
		Int64("booking_id", booking.ID).
		Int64("shift_id", booking.ShiftID).
		Str("type", string(booking.Type)).
		Bool("has_photo", booking.PhotoID != nil).
		Msg("Booking created")

	respondJSON(w, CreateBookingResponse{OK: true, Booking: booking}, http.StatusCreated)
}
