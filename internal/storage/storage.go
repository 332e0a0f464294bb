// Package storage persists uploaded order images and resolves them to URLs.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore is the object-storage collaborator for order images. Keys are
// opaque to callers; URL turns a key into something a client can fetch.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

var allowedExt = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".heic": {},
}

// NewKey derives a collision-free object key from an uploaded file name,
// keeping only a known image extension.
func NewKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExt[ext]; !ok {
		ext = ""
	}
	return uuid.NewString() + ext
}
