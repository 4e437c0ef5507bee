package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shift-booking-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DBTX is implemented by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PhotoCreator inserts photo rows
type PhotoCreator interface {
	Create(ctx context.Context, photo *models.Photo) error
}

// BookingCreator inserts booking rows
type BookingCreator interface {
	Create(ctx context.Context, booking *models.Booking) error
}

// Repositories groups the repositories bound to one transaction
type Repositories struct {
	Photos   PhotoCreator
	Bookings BookingCreator
}

// Store owns the connection pool and hands out transactional repositories
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new store over an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx runs fn inside a single transaction. The transaction is committed
// when fn returns nil and rolled back otherwise; the pooled connection is
// released on every path, including panics.
func (s *Store) WithTx(ctx context.Context, fn func(r *Repositories) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback releases the connection even when the request context is gone.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
	}()

	if err := fn(&Repositories{
		Photos:   NewPhotoRepository(tx),
		Bookings: NewBookingRepository(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	committed = true
	return nil
}

// Now returns the database clock, used as a connectivity probe
func (s *Store) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := s.pool.QueryRow(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("failed to query database time: %w", err)
	}
	return now, nil
}
