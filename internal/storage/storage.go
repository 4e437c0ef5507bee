// Package storage issues presigned credentials for the photo bucket.
package storage

import (
	"context"
	"fmt"
	"time"
)

const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// PresignedPost is a browser form upload credential: the client POSTs the
// fields plus the file to URL.
type PresignedPost struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// ObjectStore is the object storage collaborator
type ObjectStore interface {
	// PresignUpload returns a form POST credential scoped to exactly key
	PresignUpload(ctx context.Context, key, contentType string, maxBytes int64, ttl time.Duration) (*PresignedPost, error)
	// PresignRead returns a time-limited GET URL for key
	PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Options configures an object store driver
type Options struct {
	Driver    string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
	UseSSL    bool
}

// New builds the object store selected by opts.Driver
func New(ctx context.Context, opts Options) (ObjectStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	switch opts.Driver {
	case "", DriverS3:
		store, err := NewS3Store(ctx, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMinIO:
		store, err := NewMinIOStore(opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
