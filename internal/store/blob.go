// Package store persists the application state as a single JSON blob.
//
// Backends implement BlobStore. Every write carries the revision the
// caller last read, so two writers that both loaded revision N cannot
// silently overwrite each other: the second Put fails with ErrConflict
// and Repository.Update retries it on fresh data.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("store: blob not found")
	// ErrConflict is returned by Put when the stored revision differs
	// from the expected one.
	ErrConflict = errors.New("store: revision conflict")
)

// Revision values with special meaning for Put.
const (
	// AnyRevision overwrites unconditionally.
	AnyRevision int64 = -1
	// NoRevision requires that the key does not exist yet.
	NoRevision int64 = 0
)

// BlobStore is a key/value store with revision-checked writes.
type BlobStore interface {
	// Get returns the data and revision stored under key.
	Get(ctx context.Context, key string) ([]byte, int64, error)
	// Put writes data if the current revision equals expected and returns
	// the new revision.
	Put(ctx context.Context, key string, data []byte, expected int64) (int64, error)
}
