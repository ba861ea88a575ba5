package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/iudanet/offsync/internal/client/docs"
	"github.com/iudanet/offsync/internal/conflict"
	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/internal/patch"
	"github.com/iudanet/offsync/pkg/api"
)

// Protocol applies and prepares diff patches against the local document repository
type Protocol struct {
	docs     *docs.Repository
	resolver conflict.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewProtocol creates a protocol over repo using resolver for version conflicts
func NewProtocol(repo *docs.Repository, resolver conflict.Resolver, logger *slog.Logger) *Protocol {
	return &Protocol{
		docs:     repo,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyPatch applies p to the local document. The current version must equal
// p.BaseVersion (0 for a document the client does not have); otherwise a
// *VersionConflictError is returned. On success the document is clean and at
// version BaseVersion+1. A malformed patch leaves the document unmodified.
func (p *Protocol) ApplyPatch(ctx context.Context, dp api.DiffPatch) (*models.Document, error) {
	if dp.ID == "" {
		return nil, fmt.Errorf("%w: patch has no entity id", ErrMalformedPatch)
	}

	return p.docs.Update(ctx, dp.ID, func(cur *models.Document) (*models.Document, error) {
		var (
			value   []byte
			deleted bool
			version int64
			docType = dp.Type
		)
		if cur != nil {
			value, deleted, version = cur.Value, cur.Deleted, cur.Version
			if docType == "" {
				docType = cur.Type
			}
		} else {
			floor, err := p.docs.VersionFloor(ctx, dp.ID)
			if err != nil {
				return nil, err
			}
			version = floor
		}

		if version != dp.BaseVersion {
			return nil, &VersionConflictError{Key: dp.ID, LocalVersion: version, BaseVersion: dp.BaseVersion}
		}

		var (
			next        json.RawMessage
			nextDeleted bool
		)
		if deleted && patch.IsDeletion(dp.Operations) {
			// удаление уже удаленного документа подтверждает tombstone
			nextDeleted = true
		} else {
			var err error
			next, nextDeleted, err = patch.Apply(value, deleted, dp.Operations)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPatch, dp.ID, err)
			}
		}

		now := p.now().UTC()
		return &models.Document{
			Key:          dp.ID,
			Type:         typeOrDefault(docType),
			Value:        next,
			Version:      dp.BaseVersion + 1,
			Deleted:      nextDeleted,
			LastSyncedAt: now,
			UpdatedAt:    now,
		}, nil
	})
}

// ResolveConflict merges a patch that failed the version check. The remote
// value is the patch applied to the local value; the resolver picks the
// result, which is stored at max(local, BaseVersion+1)+1. The document stays
// dirty only when the result differs from the remote value, so a merge that
// the remote has not seen is pushed on the next cycle.
func (p *Protocol) ResolveConflict(ctx context.Context, dp api.DiffPatch) (*models.Document, error) {
	return p.docs.Update(ctx, dp.ID, func(cur *models.Document) (*models.Document, error) {
		var local models.Document
		if cur != nil {
			local = *cur
		} else {
			floor, err := p.docs.VersionFloor(ctx, dp.ID)
			if err != nil {
				return nil, err
			}
			local = models.Document{Key: dp.ID, Deleted: true, Version: floor}
		}

		var (
			remoteValue   json.RawMessage
			remoteDeleted = true
		)
		if !local.Deleted || !patch.IsDeletion(dp.Operations) {
			var err error
			remoteValue, remoteDeleted, err = patch.Apply(local.Value, local.Deleted, dp.Operations)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPatch, dp.ID, err)
			}
		}

		remote := conflict.Value{Data: remoteValue, Deleted: remoteDeleted}
		merged, err := p.resolver.Resolve(
			conflict.Value{Data: local.Value, Deleted: local.Deleted},
			remote,
			conflict.Context{
				Key:           dp.ID,
				Type:          dp.Type,
				LocalVersion:  local.Version,
				RemoteVersion: dp.BaseVersion + 1,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve conflict on %s: %w", dp.ID, err)
		}

		docType := dp.Type
		if docType == "" {
			docType = local.Type
		}

		now := p.now().UTC()
		next := &models.Document{
			Key:          dp.ID,
			Type:         typeOrDefault(docType),
			Value:        merged.Data,
			Version:      max(local.Version, dp.BaseVersion+1) + 1,
			Deleted:      merged.Deleted,
			Dirty:        !sameValue(merged, remote),
			LastSyncedAt: now,
			UpdatedAt:    now,
		}
		if next.Deleted {
			next.Value = nil
		}

		p.logger.Info("version conflict resolved",
			"key", dp.ID,
			"local_version", local.Version,
			"base_version", dp.BaseVersion,
			"new_version", next.Version,
			"dirty", next.Dirty,
		)
		return next, nil
	})
}

// AcknowledgePush handles the reply to a pushed patch. An echo of sent (same
// base version, same operations) confirms the pushed value. If the local
// document was written again during the exchange, the echo is acknowledged
// without touching it: the newer value stays dirty and is pushed on the next
// cycle. Reports false when reply is not such an echo or the document is still
// at the pushed version; ApplyPatch handles those.
func (p *Protocol) AcknowledgePush(ctx context.Context, sent, reply api.DiffPatch) (bool, error) {
	if reply.BaseVersion != sent.BaseVersion || !sameOperations(sent.Operations, reply.Operations) {
		return false, nil
	}

	var acked bool
	_, err := p.docs.Update(ctx, sent.ID, func(cur *models.Document) (*models.Document, error) {
		if cur == nil || cur.Version <= sent.BaseVersion {
			return nil, nil
		}
		acked = true
		return nil, nil
	})
	if err != nil {
		return false, err
	}

	if acked {
		p.logger.Debug("push acknowledged, newer local write kept",
			"key", sent.ID,
			"base_version", sent.BaseVersion,
		)
	}
	return acked, nil
}

// PreparePatches returns one full-value patch per dirty document, based on
// the version at collection time. Tombstones become a root remove.
func (p *Protocol) PreparePatches(ctx context.Context) ([]api.DiffPatch, error) {
	dirty, err := p.docs.ListDirty(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dirty documents: %w", err)
	}

	patches := make([]api.DiffPatch, 0, len(dirty))
	for _, doc := range dirty {
		patches = append(patches, api.DiffPatch{
			ID:          doc.Key,
			Type:        doc.Type,
			Operations:  patch.FullReplace(doc.Value, doc.Deleted),
			BaseVersion: doc.Version,
		})
	}
	return patches, nil
}

// BuildEnvelope wraps patches into an envelope, signing it when key is set
func (p *Protocol) BuildEnvelope(clientID string, patches []api.DiffPatch, key []byte) (*api.SyncEnvelope, error) {
	env := &api.SyncEnvelope{
		ProtocolVersion: api.ProtocolVersion,
		ClientID:        clientID,
		Patches:         patches,
		Timestamp:       p.now().UnixMilli(),
	}
	if len(key) > 0 {
		if err := api.SignEnvelope(env, key); err != nil {
			return nil, fmt.Errorf("failed to sign envelope: %w", err)
		}
	}
	return env, nil
}

// CheckEnvelope validates a response envelope before any patch is applied
func (p *Protocol) CheckEnvelope(env *api.SyncEnvelope, key []byte) error {
	if env == nil {
		return errors.New("empty response envelope")
	}
	if env.ProtocolVersion != api.ProtocolVersion {
		return fmt.Errorf("unsupported protocol version %q", env.ProtocolVersion)
	}
	if len(key) > 0 {
		if err := api.VerifyEnvelope(env, key); err != nil {
			return err
		}
	}
	return nil
}

func sameValue(a, b conflict.Value) bool {
	if a.Deleted || b.Deleted {
		return a.Deleted == b.Deleted
	}
	return bytes.Equal(a.Data, b.Data)
}

func typeOrDefault(t string) string {
	if t == "" {
		return models.DefaultDocumentType
	}
	return t
}

func sameOperations(a, b []api.PatchOperation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Op != b[i].Op || a[i].Path != b[i].Path {
			return false
		}
		if len(a[i].Value) == 0 && len(b[i].Value) == 0 {
			continue
		}
		// сервер может переупаковать JSON, сравниваем по смыслу
		if !jsonpatch.Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}
