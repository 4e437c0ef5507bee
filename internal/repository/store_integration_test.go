//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shift-booking-backend/internal/database"
	"shift-booking-backend/internal/models"
	"shift-booking-backend/internal/repository"
	"shift-booking-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container, creates the externally owned
// shifts table and applies the migrations.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_bookings",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_bookings sslmode=disable", host, port.Port())

	var pool *pgxpool.Pool
	require.Eventually(t, func() bool {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return false
		}
		return pool.Ping(ctx) == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `CREATE TABLE shifts (id BIGSERIAL PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO shifts (id) SELECT generate_series(1, 50)`)
	require.NoError(t, err)

	require.NoError(t, database.NewMigrator(pool).Run(ctx))
	// A second run must be a no-op.
	require.NoError(t, database.NewMigrator(pool).Run(ctx))

	return pool
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

type staticSigner struct{}

func (staticSigner) PhotoURL(_ context.Context, key *string) (*string, error) {
	if key == nil {
		return nil, nil
	}
	url := "https://signed/" + *key
	return &url, nil
}

func TestStore_Integration(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	store := repository.NewStore(pool)
	svc := services.NewBookingService(store, staticSigner{})

	t.Run("Now", func(t *testing.T) {
		now, err := store.Now(ctx)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), now, time.Minute)
	})

	t.Run("booking without photo", func(t *testing.T) {
		view, err := svc.CreateBooking(ctx, map[string]any{"shift_id": "1", "type": "on"})
		require.NoError(t, err)

		assert.NotZero(t, view.ID)
		assert.Nil(t, view.PhotoID)
		assert.Nil(t, view.PhotoURL)
		assert.WithinDuration(t, time.Now(), view.CapturedAt, time.Minute)

		var lat, lng *float64
		require.NoError(t, pool.QueryRow(ctx, `SELECT lat, lng FROM bookings WHERE id = $1`, view.ID).Scan(&lat, &lng))
		assert.Nil(t, lat)
		assert.Nil(t, lng)
	})

	t.Run("booking with photo", func(t *testing.T) {
		takenAt := "2026-10-15T07:30:00Z"
		view, err := svc.CreateBooking(ctx, map[string]any{
			"shift_id": "2", "type": "off", "lat": "12.5", "lng": "-3.25",
			"photo_key": "bookings/1-abc-door.jpg", "taken_at": takenAt,
		})
		require.NoError(t, err)
		require.NotNil(t, view.PhotoID)
		assert.Equal(t, "https://signed/bookings/1-abc-door.jpg", *view.PhotoURL)
		assert.True(t, view.CapturedAt.Equal(time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC)))

		var key string
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT p.s3_key FROM bookings b JOIN photos p ON p.id = b.photo_id WHERE b.id = $1`, view.ID,
		).Scan(&key))
		assert.Equal(t, "bookings/1-abc-door.jpg", key)
	})

	t.Run("unknown shift rolls back the photo", func(t *testing.T) {
		photosBefore, bookingsBefore := countRows(t, pool, "photos"), countRows(t, pool, "bookings")

		_, err := svc.CreateBooking(ctx, map[string]any{
			"shift_id": "9999", "type": "on", "photo_key": "bookings/2-def-orphan.jpg",
		})
		require.Error(t, err)
		fk, ok := repository.ForeignKeyViolation(err)
		require.True(t, ok)
		assert.Contains(t, fk.Detail, "9999")

		assert.Equal(t, photosBefore, countRows(t, pool, "photos"))
		assert.Equal(t, bookingsBefore, countRows(t, pool, "bookings"))
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		photosBefore := countRows(t, pool, "photos")
		boom := errors.New("boom")

		err := store.WithTx(ctx, func(r *repository.Repositories) error {
			require.NoError(t, r.Photos.Create(ctx, &models.Photo{S3Key: "bookings/3-ghi-x.jpg"}))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, photosBefore, countRows(t, pool, "photos"))
	})

	t.Run("WithTx releases connections", func(t *testing.T) {
		for i := 0; i < int(pool.Config().MaxConns)*2; i++ {
			_ = store.WithTx(ctx, func(r *repository.Repositories) error {
				return errors.New("fail")
			})
		}
		assert.Zero(t, pool.Stat().AcquiredConns())
	})

	t.Run("concurrent bookings", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 10; i < 30; i++ {
			wg.Add(1)
			go func(shift int) {
				defer wg.Done()
				_, err := svc.CreateBooking(ctx, map[string]any{
					"shift_id": fmt.Sprint(shift), "type": "on",
					"photo_key": fmt.Sprintf("bookings/c-%d.jpg", shift),
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		var n int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM bookings WHERE shift_id BETWEEN 10 AND 29 AND photo_id IS NOT NULL`,
		).Scan(&n))
		assert.Equal(t, 20, n)
	})
}
