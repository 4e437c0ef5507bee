package services

import (
	"context"
	"time"
)

// DatabaseClock reports the database time
type DatabaseClock interface {
	Now(ctx context.Context) (time.Time, error)
}

// HealthService probes the database
type HealthService struct {
	db DatabaseClock
}

// NewHealthService creates a new health service
func NewHealthService(db DatabaseClock) *HealthService {
	return &HealthService{db: db}
}

// Check returns the database time, or an error when it is unreachable
func (s *HealthService) Check(ctx context.Context) (time.Time, error) {
	return s.db.Now(ctx)
}
