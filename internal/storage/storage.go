package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultPresignedURLExpiry is how long a signed media link stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrObjectNotFound is returned when a key is not present in the bucket.
var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// PutObject stores body under objectKey and returns the URL clients load it from.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) (string, error)

	// GeneratePresignedDownloadURL signs a temporary GET link for a stored object.
	// A zero expires falls back to DefaultPresignedURLExpiry.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes the object. Callers treat failures as best effort.
	DeleteObject(ctx context.Context, objectKey string) error
}
