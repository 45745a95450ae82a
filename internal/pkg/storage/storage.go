package storage

import (
	"context"
	"io"
)

// FileStorage persists selfie payloads and serves them back by URL.
type FileStorage interface {
	// Upload stores the file under path and returns the stored key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Delete removes a stored file. Deleting a missing file is not an
	// error.
	Delete(ctx context.Context, path string) error

	// GetURL returns a public URL for the stored file.
	GetURL(ctx context.Context, path string) (string, error)
}
