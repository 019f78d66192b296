// Package storage resolves exercise video references against object storage.
package storage

import (
	"context"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the object storage operations the catalog needs.
type FileStorage interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}

// VideoLinker turns catalog video references into playable URLs.
type VideoLinker struct {
	store   FileStorage
	expires time.Duration
}

// NewVideoLinker returns a linker; a nil store leaves references untouched.
func NewVideoLinker(store FileStorage, expires time.Duration) *VideoLinker {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	return &VideoLinker{store: store, expires: expires}
}

// Link returns ref unchanged when it is already a URL or no store is
// configured, and a presigned download URL otherwise.
func (l *VideoLinker) Link(ctx context.Context, ref string) (string, error) {
	if ref == "" || l == nil || l.store == nil {
		return ref, nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	return l.store.GeneratePresignedDownloadURL(ctx, strings.TrimPrefix(ref, "s3://"), l.expires)
}
