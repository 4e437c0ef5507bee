package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore presigns against a MinIO server
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates a MinIO backed object store. Endpoint is host[:port];
// an explicit http:// or https:// scheme overrides UseSSL. A region is always set so that presigning never needs a
// bucket location lookup.
func NewMinIOStore(opts Options) (*MinIOStore, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	endpoint, secure := minioEndpoint(opts.Endpoint, opts.UseSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOStore{client: client, bucket: opts.Bucket}, nil
}

// minioEndpoint splits an optional scheme off endpoint and reports whether
// TLS should be used
func minioEndpoint(endpoint string, useSSL bool) (string, bool) {
	if host, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return host, true
	}
	if host, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return host, false
	}
	return endpoint, useSSL
}

// PresignUpload generates a presigned POST policy for key
func (s *MinIOStore) PresignUpload(ctx context.Context, key, contentType string, maxBytes int64, ttl time.Duration) (*PresignedPost, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, fmt.Errorf("failed to set policy bucket: %w", err)
	}
	if err := policy.SetKey(key); err != nil {
		return nil, fmt.Errorf("failed to set policy key: %w", err)
	}
	if err := policy.SetExpires(time.Now().UTC().Add(ttl)); err != nil {
		return nil, fmt.Errorf("failed to set policy expiry: %w", err)
	}
	if err := policy.SetContentLengthRange(1, maxBytes); err != nil {
		return nil, fmt.Errorf("failed to set policy size range: %w", err)
	}
	if err := policy.SetContentType(contentType); err != nil {
		return nil, fmt.Errorf("failed to set policy content type: %w", err)
	}

	u, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned post: %w", err)
	}
	return &PresignedPost{URL: u.String(), Fields: fields}, nil
}

// PresignRead generates a presigned GET URL for key
func (s *MinIOStore) PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}
