// Package storage wraps S3-compatible object storage for report attachments.
package storage

import (
	"context"
	"time"
)

// PresignedURL is a time-limited upload or download link.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService is the object storage surface used by the reports module.
type StorageService interface {
	// GenerateUploadURL validates the declared file and returns a presigned
	// PUT URL under folder with a collision-free key.
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)

	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)

	DeleteObject(ctx context.Context, bucket, fileKey string) error

	EnsureBucketExists(ctx context.Context, bucket string) error

	ValidateContentType(contentType string) error

	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}

var _ StorageService = (*MinIOService)(nil)
