// Package memory provides an in-process Store, used by tests and by hosts
// that do not need durability.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iudanet/offsync/internal/client/storage"
)

// Storage хранит значения в map под RWMutex
type Storage struct {
	data   map[string][]byte
	mu     sync.RWMutex
	closed bool
}

var _ storage.Store = (*Storage)(nil)

// New creates an empty in-memory store
func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// Init is a no-op for the in-memory store
func (s *Storage) Init(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	return nil
}

// Get returns a copy of the stored value
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneBytes(v), nil
}

// Put stores a copy of value
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	s.data[key] = cloneBytes(value)
	return nil
}

// Delete removes key
func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	delete(s.data, key)
	return nil
}

// List returns sorted keys with the given prefix
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store closed; subsequent calls fail with ErrStorageClosed
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
