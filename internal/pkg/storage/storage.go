// Package storage keeps uploaded receipt images outside the database.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get when nothing is stored at the path.
var ErrNotExist = errors.New("storage: object does not exist")

// Storage stores opaque blobs under slash-separated relative paths.
type Storage interface {
	// Save writes content to path, replacing anything already there.
	// A failed Save leaves no partial object behind.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the object at path. The caller closes it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, path string) error
}
