package storage

import (
	"context"
	"fmt"
	"io/fs"
)

// ErrNotFound is returned when a key does not exist. It matches fs.ErrNotExist.
var ErrNotFound = fmt.Errorf("object not found: %w", fs.ErrNotExist)

// Store handles waveform file storage operations
type Store interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
}

// COSMOS files are plain text; browsers and tools label them inconsistently.
var validContentTypes = map[string]bool{
	"text/plain":               true,
	"application/octet-stream": true,
	"application/x-cosmos":     true,
}

// validateContentType validates that the content type is supported
func validateContentType(contentType string) error {
	if !validContentTypes[contentType] {
		return fmt.Errorf("invalid content type: %s. Supported types: text/plain, application/octet-stream, application/x-cosmos", contentType)
	}
	return nil
}
