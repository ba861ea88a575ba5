// Package storage defines the key-value capability the offline core is built on.
// Concrete backends live in subpackages (memory, boltdb, sqlite) and an
// encrypting wrapper lives in storage/encrypted.
package storage

import "context"

//go:generate moq -out store_mock.go . Store

// Store is a durable key-value store with prefix listing.
// Values are opaque bytes; the layers above store JSON.
type Store interface {
	// Init prepares the backend (buckets, tables). Safe to call more than once.
	Init(ctx context.Context) error

	// Get returns the value for key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns keys starting with prefix in ascending byte order.
	// An empty prefix lists every key.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend
	Close() error
}
