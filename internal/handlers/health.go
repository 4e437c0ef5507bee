package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthChecker probes the database
type HealthChecker interface {
	Check(ctx context.Context) (time.Time, error)
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	healthService HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(healthService HealthChecker) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// HealthResponse is the body of a healthy GET /health
type HealthResponse struct {
	OK   bool      `json:"ok"`
	Time time.Time `json:"time"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now, err := h.healthService.Check(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Health check failed")
		respondError(w, ErrorResponse{Error: codeDBUnreachable}, http.StatusInternalServerError)
		return
	}
	respondJSON(w, HealthResponse{OK: true, Time: now}, http.StatusOK)
}
