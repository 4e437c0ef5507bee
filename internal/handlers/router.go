package handlers

import (
	"net/http"

	"shift-booking-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP surface
func NewRouter(
	healthHandler *HealthHandler,
	photoHandler *PhotoHandler,
	bookingHandler *BookingHandler,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/health", healthHandler.Health)
	r.Post("/photos/presign", photoHandler.Presign)
	r.Post("/bookings", bookingHandler.CreateBooking)

	return r
}
