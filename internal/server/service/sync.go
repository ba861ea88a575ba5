// Package service implements the reference remote: it accepts pushed patches,
// answers with pending changes and applies delivered queue operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/offsync/internal/metrics"
	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/internal/patch"
	"github.com/iudanet/offsync/internal/server/storage"
	"github.com/iudanet/offsync/internal/validation"
	"github.com/iudanet/offsync/pkg/api"
)

// ErrInvalidOperation is returned for a delivered operation that cannot be applied
var ErrInvalidOperation = errors.New("invalid operation")

// Stats summarizes one exchange
type Stats struct {
	Accepted  int // принятые патчи клиента
	Rejected  int // патчи, на которые сервер ответил своим значением
	Malformed int // патчи, которые нельзя применить
	Pulled    int // изменения других клиентов в ответе
}

// SyncService serializes all document mutations of the server
type SyncService struct {
	storage storage.DocumentStorage
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.Mutex
}

// NewSyncService creates a new sync service
func NewSyncService(s storage.DocumentStorage, logger *slog.Logger) *SyncService {
	return &SyncService{
		storage: s,
		logger:  logger,
		now:     time.Now,
	}
}

// Exchange applies the pushed patches of clientID and returns the response
// envelope: an acknowledgement or the server value for every pushed patch,
// followed by documents changed since the client last saw them.
func (s *SyncService) Exchange(ctx context.Context, clientID string, req *api.SyncEnvelope) (*api.SyncEnvelope, Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	resp := &api.SyncEnvelope{
		ProtocolVersion: api.ProtocolVersion,
		ClientID:        clientID,
		Patches:         make([]api.DiffPatch, 0, len(req.Patches)),
	}

	pushed := make(map[string]struct{}, len(req.Patches))
	for _, dp := range req.Patches {
		out, err := s.push(ctx, clientID, dp, &stats)
		if err != nil {
			return nil, stats, err
		}
		pushed[dp.ID] = struct{}{}
		if out != nil {
			resp.Patches = append(resp.Patches, *out)
		}
	}

	pending, err := s.storage.ListPending(ctx, clientID)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to list pending documents: %w", err)
	}
	for _, doc := range pending {
		if _, ok := pushed[doc.Key]; ok {
			continue
		}
		out, err := s.pull(ctx, clientID, doc)
		if err != nil {
			return nil, stats, err
		}
		if out != nil {
			resp.Patches = append(resp.Patches, *out)
			stats.Pulled++
		}
	}

	resp.Timestamp = s.now().UnixMilli()
	return resp, stats, nil
}

// push handles one client patch. The write is accepted when the client has
// seen the latest server version; otherwise the server value wins and is sent
// back with the client's last known version as base.
func (s *SyncService) push(ctx context.Context, clientID string, dp api.DiffPatch, stats *Stats) (*api.DiffPatch, error) {
	if dp.ID == "" {
		stats.Malformed++
		metrics.ServerPatches.WithLabelValues("malformed").Inc()
		s.logger.Warn("patch without entity id skipped", "client_id", clientID)
		return nil, nil
	}

	doc, err := s.storage.GetDocument(ctx, dp.ID)
	if err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	view, err := s.view(ctx, clientID, dp.ID)
	if err != nil {
		return nil, err
	}

	var serverVersion int64
	if doc != nil {
		serverVersion = doc.Version
	}

	if doc != nil && view.SeenVersion != serverVersion {
		return s.reject(ctx, dp, doc, view, stats)
	}

	var (
		value   []byte
		deleted = true
	)
	if doc != nil {
		value, deleted = doc.Value, doc.Deleted
	}

	ops := normalize(dp.Operations, deleted)
	var (
		next        []byte
		nextDeleted = true
	)
	if !deleted || !patch.IsDeletion(ops) {
		next, nextDeleted, err = patch.Apply(value, deleted, ops)
		if err != nil {
			stats.Malformed++
			metrics.ServerPatches.WithLabelValues("malformed").Inc()
			s.logger.Warn("malformed patch skipped", "client_id", clientID, "key", dp.ID, "error", err)
			return nil, nil
		}
	}

	stored := &models.StoredDocument{
		Key:       dp.ID,
		Type:      typeOrDefault(dp.Type, doc),
		Value:     next,
		Version:   serverVersion + 1,
		Deleted:   nextDeleted,
		UpdatedBy: clientID,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.storage.SaveDocument(ctx, stored); err != nil {
		return nil, err
	}

	view.KnownVersion = dp.BaseVersion + 1
	view.SeenVersion = stored.Version
	if err := s.storage.SaveClientView(ctx, view); err != nil {
		return nil, err
	}

	stats.Accepted++
	metrics.ServerPatches.WithLabelValues("accepted").Inc()
	s.logger.Debug("patch accepted",
		"client_id", clientID,
		"key", dp.ID,
		"base_version", dp.BaseVersion,
		"server_version", stored.Version,
	)

	return &api.DiffPatch{
		ID:          dp.ID,
		Type:        stored.Type,
		Operations:  ops,
		BaseVersion: dp.BaseVersion,
	}, nil
}

func (s *SyncService) reject(ctx context.Context, dp api.DiffPatch, doc *models.StoredDocument, view *models.ClientView, stats *Stats) (*api.DiffPatch, error) {
	base := view.KnownVersion
	out := &api.DiffPatch{
		ID:          dp.ID,
		Type:        doc.Type,
		Operations:  documentOps(doc),
		BaseVersion: base,
	}

	// клиент разрешит конфликт и окажется на max(V, base+1)+1
	if base == dp.BaseVersion {
		view.KnownVersion = base + 1
	} else {
		view.KnownVersion = max(dp.BaseVersion, base+1) + 1
	}
	view.SeenVersion = doc.Version
	if err := s.storage.SaveClientView(ctx, view); err != nil {
		return nil, err
	}

	stats.Rejected++
	metrics.ServerPatches.WithLabelValues("rejected").Inc()
	s.logger.Info("stale patch rejected, server value returned",
		"client_id", view.ClientID,
		"key", dp.ID,
		"base_version", dp.BaseVersion,
		"known_version", base,
		"server_version", doc.Version,
	)
	return out, nil
}

// pull builds a patch for a document the client has not seen yet
func (s *SyncService) pull(ctx context.Context, clientID string, doc *models.StoredDocument) (*api.DiffPatch, error) {
	view, err := s.view(ctx, clientID, doc.Key)
	if err != nil {
		return nil, err
	}

	// Клиент не знал документ, который уже удален
	if doc.Deleted && view.KnownVersion == 0 {
		view.SeenVersion = doc.Version
		return nil, s.storage.SaveClientView(ctx, view)
	}

	out := &api.DiffPatch{
		ID:          doc.Key,
		Type:        doc.Type,
		Operations:  documentOps(doc),
		BaseVersion: view.KnownVersion,
	}

	view.KnownVersion++
	view.SeenVersion = doc.Version
	if err := s.storage.SaveClientView(ctx, view); err != nil {
		return nil, err
	}
	return out, nil
}

// Deliver applies one queued operation last-writer-wins. Operations are
// applied at most once: a repeated id returns the original result.
func (s *SyncService) Deliver(ctx context.Context, clientID string, op api.Operation) (*api.DeliverResponse, error) {
	if op.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidOperation)
	}
	if err := validation.ValidateKey(op.Key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	opType := models.OperationType(op.Type)
	if err := opType.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied, err := s.storage.GetOperation(ctx, op.ID)
	if err == nil {
		metrics.ServerOperations.WithLabelValues("duplicate").Inc()
		s.logger.Debug("duplicate operation", "client_id", clientID, "operation_id", op.ID)
		return &api.DeliverResponse{OperationID: op.ID, Version: applied.Version, Duplicate: true}, nil
	}
	if !errors.Is(err, storage.ErrOperationNotFound) {
		return nil, fmt.Errorf("failed to check operation: %w", err)
	}

	doc, err := s.storage.GetDocument(ctx, op.Key)
	if err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var version int64
	switch {
	case opType == models.OperationDelete && (doc == nil || doc.Deleted):
		// удалять нечего
		if doc != nil {
			version = doc.Version
		}
	default:
		next := &models.StoredDocument{
			Key:       op.Key,
			Type:      typeOrDefault("", doc),
			Version:   1,
			UpdatedBy: clientID,
			UpdatedAt: s.now().UTC(),
		}
		if doc != nil {
			next.Version = doc.Version + 1
		}
		if opType == models.OperationDelete {
			next.Deleted = true
		} else {
			if len(op.Payload) == 0 {
				return nil, fmt.Errorf("%w: %s requires a payload", ErrInvalidOperation, opType)
			}
			next.Value = op.Payload
		}
		if err := s.storage.SaveDocument(ctx, next); err != nil {
			return nil, err
		}
		version = next.Version

		// свою запись клиент уже видел
		view, err := s.view(ctx, clientID, op.Key)
		if err != nil {
			return nil, err
		}
		if doc == nil || view.SeenVersion == doc.Version {
			view.SeenVersion = next.Version
			if err := s.storage.SaveClientView(ctx, view); err != nil {
				return nil, err
			}
		}
	}

	err = s.storage.RecordOperation(ctx, &models.AppliedOperation{
		ID:        op.ID,
		ClientID:  clientID,
		Key:       op.Key,
		Type:      opType,
		Version:   version,
		AppliedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	metrics.ServerOperations.WithLabelValues("applied").Inc()
	s.logger.Debug("operation applied",
		"client_id", clientID,
		"operation_id", op.ID,
		"type", opType,
		"key", op.Key,
		"version", version,
	)
	return &api.DeliverResponse{OperationID: op.ID, Version: version}, nil
}

func (s *SyncService) view(ctx context.Context, clientID, key string) (*models.ClientView, error) {
	view, err := s.storage.GetClientView(ctx, clientID, key)
	if errors.Is(err, storage.ErrViewNotFound) {
		return &models.ClientView{ClientID: clientID, Key: key}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client view: %w", err)
	}
	return view, nil
}

// normalize turns a root replace of a missing document into an add
func normalize(ops []api.PatchOperation, deleted bool) []api.PatchOperation {
	if !deleted || len(ops) == 0 {
		return ops
	}
	out := make([]api.PatchOperation, len(ops))
	copy(out, ops)
	if out[0].Op == api.OpReplace && (out[0].Path == "" || out[0].Path == "/") {
		out[0].Op = api.OpAdd
	}
	return out
}

func documentOps(doc *models.StoredDocument) []api.PatchOperation {
	if doc.Deleted {
		return patch.FullReplace(nil, true)
	}
	return patch.FullAdd(doc.Value)
}

func typeOrDefault(docType string, doc *models.StoredDocument) string {
	if docType != "" {
		return docType
	}
	if doc != nil && doc.Type != "" {
		return doc.Type
	}
	return models.DefaultDocumentType
}
