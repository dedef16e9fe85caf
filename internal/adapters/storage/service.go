// Package storage stores lead attachments in S3-compatible object storage.
package storage

import (
	"context"
	"time"
)

// PresignedURL contains the URL and metadata for a presigned download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service defines the object storage operations the leads module needs.
type Service interface {
	// Upload stores one attachment under the lead's folder. Satisfies the
	// coordinator's uploader dependency.
	Upload(ctx context.Context, leadID, fileName, contentType string, data []byte) error

	// GenerateDownloadURL creates a presigned URL for fetching an attachment.
	GenerateDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)

	// EnsureBucket creates the configured bucket if it doesn't exist.
	EnsureBucket(ctx context.Context) error
}
