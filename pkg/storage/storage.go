package storage

import (
	"context"
	"time"
)

// PresignedURLResult contains a presigned URL for direct download
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Storage resolves stored business document images to URLs a remote OCR provider can fetch
type Storage interface {
	// GetURL returns the public URL for a key
	GetURL(key string) string

	// GetPresignedDownloadURL generates a time-limited GET URL for a private object
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (*PresignedURLResult, error)
}
