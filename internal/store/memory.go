package store

import (
	"context"
	"sync"
)

type memoryEntry struct {
	data     []byte
	revision int64
}

// MemoryBlobStore keeps blobs in process memory. It backs tests and the
// "memory" backend.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryEntry
}

// NewMemoryBlobStore returns an empty in-memory store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]memoryEntry)}
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.blobs[key]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return append([]byte(nil), e.data...), e.revision, nil
}

func (s *MemoryBlobStore) Put(_ context.Context, key string, data []byte, expected int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.blobs[key].revision
	if expected >= 0 && expected != current {
		return 0, ErrConflict
	}

	next := current + 1
	s.blobs[key] = memoryEntry{data: append([]byte(nil), data...), revision: next}
	return next, nil
}
