package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrConflict is returned by Put when an object already exists at the
// requested path. Puts never overwrite.
var ErrConflict = errors.New("object already exists")

// Object describes a stored blob as reported by the backend.
type Object struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the blob-store boundary. Paths are opaque keys of the form
// "{userID}/{name}"; the first segment is the only access-control mechanism,
// so callers are expected to scope every prefix by owner.
type Store interface {
	// Put writes a new object. Existing objects are never replaced;
	// a collision yields ErrConflict.
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error

	// List returns the objects under prefix, newest first.
	List(ctx context.Context, prefix string, limit int) ([]Object, error)

	// Remove deletes the given objects.
	Remove(ctx context.Context, paths []string) error

	// PublicURL derives the publicly downloadable URL for path. It is a
	// pure derivation and does not check that the object exists.
	PublicURL(path string) string

	// Exists reports whether an object is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}
