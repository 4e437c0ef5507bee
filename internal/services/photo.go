package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"shift-booking-backend/internal/storage"

	"github.com/google/uuid"
)

const (
	photoKeyPrefix      = "bookings/"
	defaultFilename     = "photo.jpg"
	defaultFiletype     = "image/jpeg"
	defaultUploadTTL    = time.Minute
	defaultReadTTL      = time.Hour
	defaultMaxPhotoSize = 5 << 20
)

// PhotoLimits bounds the credentials handed out for photos
type PhotoLimits struct {
	UploadTTL      time.Duration
	ReadTTL        time.Duration
	MaxUploadBytes int64
}

// PhotoService issues upload credentials and signed read URLs for photos
type PhotoService struct {
	store  storage.ObjectStore
	limits PhotoLimits
	now    func() time.Time
}

// NewPhotoService creates a new photo service. Zero limits fall back to
// one minute uploads, one hour reads and 5 MiB objects.
func NewPhotoService(store storage.ObjectStore, limits PhotoLimits) *PhotoService {
	if limits.UploadTTL <= 0 {
		limits.UploadTTL = defaultUploadTTL
	}
	if limits.ReadTTL <= 0 {
		limits.ReadTTL = defaultReadTTL
	}
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = defaultMaxPhotoSize
	}
	return &PhotoService{
		store:  store,
		limits: limits,
		now:    time.Now,
	}
}

// PresignRequest represents a request for an upload credential
type PresignRequest struct {
	Filename string `json:"filename"`
	Filetype string `json:"filetype"`
}

// PresignResponse carries the key the client must send back with its booking
type PresignResponse struct {
	Key       string                 `json:"key"`
	Presigned *storage.PresignedPost `json:"presigned"`
}

// PresignUpload generates a unique key and a short-lived upload credential for it
func (s *PhotoService) PresignUpload(ctx context.Context, req PresignRequest) (*PresignResponse, error) {
	filetype := req.Filetype
	if filetype == "" {
		filetype = defaultFiletype
	}

	key := s.newKey(req.Filename)

	presigned, err := s.store.PresignUpload(ctx, key, filetype, s.limits.MaxUploadBytes, s.limits.UploadTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}

	return &PresignResponse{Key: key, Presigned: presigned}, nil
}

// PhotoURL returns a signed read URL for key, or nil without calling the
// store when there is no key
func (s *PhotoService) PhotoURL(ctx context.Context, key *string) (*string, error) {
	if key == nil || *key == "" {
		return nil, nil
	}

	url, err := s.store.PresignRead(ctx, *key, s.limits.ReadTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign photo URL: %w", err)
	}
	return &url, nil
}

// newKey builds bookings/<unix nanos>-<random>-<filename>. Only the base
// name of the client filename is used so the key stays under the prefix.
func (s *PhotoService) newKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = defaultFilename
	}

	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d-%s-%s", photoKeyPrefix, s.now().UnixNano(), random, name)
}
