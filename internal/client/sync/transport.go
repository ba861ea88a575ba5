package sync

import (
	"context"

	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/pkg/api"
)

//go:generate moq -out transport_mock.go . Transport

// Transport carries envelopes and queued operations to the remote authority
type Transport interface {
	// SendSyncRequest pushes local patches and returns the remote patches
	SendSyncRequest(ctx context.Context, env *api.SyncEnvelope) (*api.SyncEnvelope, error)

	// DeliverOperation delivers one queued operation; nil means acknowledged
	DeliverOperation(ctx context.Context, op models.Operation) error
}
