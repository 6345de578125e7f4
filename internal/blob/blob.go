// Package blob stores photo and tag image bytes outside the database.
package blob

import (
	"context"
	"io"
)

// Store persists image blobs under opaque storage keys.
type Store interface {
	// Save writes the blob and returns its storage key.
	Save(ctx context.Context, prefix, contentType string, r io.Reader, size int64) (string, error)
	// Open returns the blob contents and content type.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	// Remove deletes the blob. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
