// Package storage provides access to the S3-compatible object store that
// holds avatar assets.
package storage

import (
	"context"
	"io"
)

// ObjectStore is the object-store contract the profile workflow depends on.
type ObjectStore interface {
	// Upload stores body under key, overwriting any existing object.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error

	// Remove deletes the objects at the given keys. Callers may treat a
	// failure as non-fatal; the store itself reports it either way.
	Remove(ctx context.Context, keys []string) error

	// PublicURL resolves the publicly reachable URL for key.
	PublicURL(key string) string
}
