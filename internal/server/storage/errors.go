package storage

import "errors"

// Common storage errors
var (
	// ErrDocumentNotFound indicates that the server has no document with this key
	ErrDocumentNotFound = errors.New("document not found")

	// ErrViewNotFound indicates that the client has never synced the document
	ErrViewNotFound = errors.New("client view not found")

	// ErrOperationNotFound indicates that the operation has not been applied yet
	ErrOperationNotFound = errors.New("operation not found")
)
