// Package storage defines the object storage layer that large asset payloads
// are offloaded to. Backends are the local filesystem and S3-compatible
// object storage (AWS S3, MinIO).
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for object storage operations.
// All storage backends (local, S3, OSS, MinIO) must implement this interface.
type Storage interface {
	// PutObject uploads a payload to storage.
	// key: object key in format "assets/{uuid}"
	// size: payload size in bytes, zero when unknown
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject retrieves a payload from storage.
	// Returns a ReadCloser that must be closed by the caller.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes a payload. Missing objects are not an error.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks if an object exists in storage.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// Type returns the storage type identifier ("local" or "s3").
	Type() string
}
