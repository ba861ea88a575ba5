package storage

import (
	"context"

	"github.com/iudanet/offsync/internal/models"
)

// DocumentStorage defines persistence for server documents and per-client views
type DocumentStorage interface {
	// GetDocument retrieves a document (tombstones included) by key
	// Returns ErrDocumentNotFound if the key was never written
	GetDocument(ctx context.Context, key string) (*models.StoredDocument, error)

	// SaveDocument creates or replaces a document
	SaveDocument(ctx context.Context, doc *models.StoredDocument) error

	// GetClientView retrieves what clientID knows about key
	// Returns ErrViewNotFound if the client never synced the key
	GetClientView(ctx context.Context, clientID, key string) (*models.ClientView, error)

	// SaveClientView creates or replaces a client view
	SaveClientView(ctx context.Context, view *models.ClientView) error

	// ListPending returns documents whose version is newer than the one
	// clientID has seen, ordered by key
	ListPending(ctx context.Context, clientID string) ([]*models.StoredDocument, error)

	// GetOperation retrieves an applied operation by id
	// Returns ErrOperationNotFound if the operation was not applied
	GetOperation(ctx context.Context, id string) (*models.AppliedOperation, error)

	// RecordOperation stores an applied operation
	RecordOperation(ctx context.Context, op *models.AppliedOperation) error

	// Ping checks that the storage is reachable
	Ping(ctx context.Context) error
}
