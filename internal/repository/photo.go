package repository

import (
	"context"
	"fmt"

	"shift-booking-backend/internal/models"
)

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db DBTX
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db DBTX) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a photo and fills in its store-assigned ID and creation time
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (s3_key)
		VALUES ($1)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, photo.S3Key).Scan(&photo.ID, &photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", classify(err))
	}
	return nil
}
