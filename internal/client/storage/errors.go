package storage

import (
	"errors"
	"fmt"
)

// Common client storage errors
var (
	// ErrNotFound indicates that the key has no value (or the value could not be decrypted)
	ErrNotFound = errors.New("value not found")

	// ErrUnavailable indicates that the underlying store is inaccessible.
	// It is never absorbed by the core: it always reaches the caller.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = fmt.Errorf("%w: storage is closed", ErrUnavailable)
)

// Unavailable wraps a backend failure so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
