package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shift-booking-backend/internal/models"
	"shift-booking-backend/internal/repository"
	"shift-booking-backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory Transactor. Writes are staged per transaction
// and only become visible when fn returns nil.
type memStore struct {
	mu        sync.Mutex
	shifts    map[int64]bool
	photos    []models.Photo
	bookings  []models.Booking
	nextID    int64
	now       time.Time
	txCount   int
	rollbacks int
	// failWith, when set, is returned by the booking insert.
	failWith error
}

func newMemStore(shiftIDs ...int64) *memStore {
	m := &memStore{
		shifts: make(map[int64]bool),
		now:    time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}
	for _, id := range shiftIDs {
		m.shifts[id] = true
	}
	return m
}

type memTx struct {
	store    *memStore
	photos   []models.Photo
	bookings []models.Booking
}

type memPhotos struct{ tx *memTx }

type memBookings struct{ tx *memTx }

func (m *memStore) WithTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	m.mu.Lock()
	m.txCount++
	m.mu.Unlock()

	tx := &memTx{store: m}
	if err := fn(&repository.Repositories{
		Photos:   memPhotos{tx: tx},
		Bookings: memBookings{tx: tx},
	}); err != nil {
		m.mu.Lock()
		m.rollbacks++
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos = append(m.photos, tx.photos...)
	m.bookings = append(m.bookings, tx.bookings...)
	return nil
}

func (m *memStore) id() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID
}

func (m *memStore) snapshot() ([]models.Photo, []models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Photo(nil), m.photos...), append([]models.Booking(nil), m.bookings...)
}

func (p memPhotos) Create(_ context.Context, photo *models.Photo) error {
	photo.ID = p.tx.store.id()
	photo.CreatedAt = p.tx.store.now
	p.tx.photos = append(p.tx.photos, *photo)
	return nil
}

func (b memBookings) Create(_ context.Context, booking *models.Booking) error {
	s := b.tx.store
	if s.failWith != nil {
		return s.failWith
	}

	s.mu.Lock()
	known := s.shifts[booking.ShiftID]
	s.mu.Unlock()
	if !known {
		return fmt.Errorf("failed to create booking: %w", &repository.ConstraintViolationError{
			Kind:       repository.ConstraintForeignKey,
			Constraint: "bookings_shift_id_fkey",
			Table:      "bookings",
			Detail:     fmt.Sprintf("Key (shift_id)=(%d) is not present in table \"shifts\".", booking.ShiftID),
		})
	}

	booking.ID = s.id()
	if booking.CapturedAt.IsZero() {
		booking.CapturedAt = s.now
	}
	b.tx.bookings = append(b.tx.bookings, *booking)
	return nil
}

// mockSigner is a testify mock of PhotoURLSigner
type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) PhotoURL(ctx context.Context, key *string) (*string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// mockObjectStore is a testify mock of storage.ObjectStore
type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) PresignUpload(ctx context.Context, key, contentType string, maxBytes int64, ttl time.Duration) (*storage.PresignedPost, error) {
	args := m.Called(ctx, key, contentType, maxBytes, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PresignedPost), args.Error(1)
}

func (m *mockObjectStore) PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func strPtr(s string) *string {
	return &s
}
