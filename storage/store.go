package storage

import (
	"context"
	"errors"
)

// Version is the optimistic-concurrency token attached to every blob read.
// For the GCS backend it is the object generation. Version 0 as a write
// precondition means "the object must not exist yet".
type Version int64

var (
	ErrNotFound = errors.New("object not found")

	// ErrConflict is returned when a conditional write loses the race: the
	// supplied version no longer matches the stored object. The caller must
	// re-read and redo its edits; there is no automatic merge.
	ErrConflict = errors.New("version conflict")
)

// BlobStore is the durable store for site workbooks and archived photos.
type BlobStore interface {
	// Read returns the blob bytes together with its current version token.
	Read(ctx context.Context, path string) ([]byte, Version, error)

	// Write stores the blob if the version precondition holds, otherwise
	// returns ErrConflict. Pass 0 to require that the object does not exist.
	Write(ctx context.Context, path string, data []byte, version Version) error

	// WriteNew stores the blob without any precondition. Used for archive
	// objects whose names are unique per upload.
	WriteNew(ctx context.Context, path string, data []byte) error

	Delete(ctx context.Context, path string) error

	// ListDirs returns the sorted set of direct child "directories" under the
	// given prefix.
	ListDirs(ctx context.Context, prefix string) ([]string, error)

	// ListFiles returns the sorted object names (relative to the prefix)
	// directly under the given prefix.
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}
