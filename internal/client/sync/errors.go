package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionConflict indicates that a patch was built against a different local version
	ErrVersionConflict = errors.New("version conflict")

	// ErrMalformedPatch indicates a patch that cannot be applied; the document is left untouched
	ErrMalformedPatch = errors.New("malformed patch")

	// ErrTransport indicates that the envelope exchange failed
	ErrTransport = errors.New("transport failure")

	// ErrDelivery indicates that a queued operation could not be delivered
	ErrDelivery = errors.New("queue delivery failure")

	// ErrQueueStuck indicates that the queue head exhausted its retries
	ErrQueueStuck = errors.New("queue head exhausted retries")
)

// VersionConflictError describes a patch whose base version does not match the local document
type VersionConflictError struct {
	Key          string
	LocalVersion int64
	BaseVersion  int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: local %d, patch base %d", e.Key, e.LocalVersion, e.BaseVersion)
}

// Unwrap allows errors.Is(err, ErrVersionConflict)
func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}
