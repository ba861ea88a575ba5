package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/offsync/internal/server/service"
	"github.com/iudanet/offsync/pkg/api"
)

// Syncer определяет серверную логику синхронизации
type Syncer interface {
	Exchange(ctx context.Context, clientID string, req *api.SyncEnvelope) (*api.SyncEnvelope, service.Stats, error)
	Deliver(ctx context.Context, clientID string, op api.Operation) (*api.DeliverResponse, error)
}

var (
	errClientMismatch  = errors.New("client_id mismatch")
	errProtocolVersion = errors.New("unsupported protocol version")
)

// SyncHandler handles envelope exchange and operation delivery
type SyncHandler struct {
	logger     *slog.Logger
	syncer     Syncer
	signingKey []byte
}

// NewSyncHandler creates a new sync handler. With a non-empty signingKey
// request envelopes must be signed and responses are signed.
func NewSyncHandler(logger *slog.Logger, syncer Syncer, signingKey []byte) *SyncHandler {
	return &SyncHandler{
		logger:     logger,
		syncer:     syncer,
		signingKey: signingKey,
	}
}

// HandleSync обрабатывает POST /api/v1/sync
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Получаем client_id из контекста (установлен AuthMiddleware)
	clientID, ok := GetClientID(r.Context())
	if !ok {
		h.logger.Error("client id not found in context")
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req api.SyncEnvelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode sync request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, status, err := h.exchange(r.Context(), clientID, &req)
	if err != nil {
		writeError(w, h.logger, status, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// HandleOps обрабатывает POST /api/v1/ops
func (h *SyncHandler) HandleOps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	clientID, ok := GetClientID(r.Context())
	if !ok {
		h.logger.Error("client id not found in context")
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req api.DeliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode deliver request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	ack, status, err := h.deliver(r.Context(), clientID, &req)
	if err != nil {
		writeError(w, h.logger, status, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ack)
}

// exchange проверяет конверт и выполняет обмен; возвращает HTTP статус ошибки
func (h *SyncHandler) exchange(ctx context.Context, clientID string, req *api.SyncEnvelope) (*api.SyncEnvelope, int, error) {
	if req.ProtocolVersion != api.ProtocolVersion {
		h.logger.Warn("unsupported protocol version", "client_id", clientID, "version", req.ProtocolVersion)
		return nil, http.StatusBadRequest, errProtocolVersion
	}
	if req.ClientID != clientID {
		h.logger.Warn("envelope client_id mismatch", "expected", clientID, "got", req.ClientID)
		return nil, http.StatusForbidden, errClientMismatch
	}
	if len(h.signingKey) > 0 {
		if err := api.VerifyEnvelope(req, h.signingKey); err != nil {
			h.logger.Warn("envelope signature rejected", "client_id", clientID, "error", err)
			return nil, http.StatusUnauthorized, err
		}
	}

	resp, stats, err := h.syncer.Exchange(ctx, clientID, req)
	if err != nil {
		h.logger.Error("sync exchange failed", "client_id", clientID, "error", err)
		return nil, http.StatusInternalServerError, errors.New("internal server error")
	}

	if len(h.signingKey) > 0 {
		if err := api.SignEnvelope(resp, h.signingKey); err != nil {
			h.logger.Error("failed to sign response", "error", err)
			return nil, http.StatusInternalServerError, errors.New("internal server error")
		}
	}

	h.logger.Info("sync completed",
		"client_id", clientID,
		"received_patches", len(req.Patches),
		"returned_patches", len(resp.Patches),
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"malformed", stats.Malformed,
	)
	return resp, http.StatusOK, nil
}

func (h *SyncHandler) deliver(ctx context.Context, clientID string, req *api.DeliverRequest) (*api.DeliverResponse, int, error) {
	if req.ClientID != "" && req.ClientID != clientID {
		h.logger.Warn("operation client_id mismatch", "expected", clientID, "got", req.ClientID)
		return nil, http.StatusForbidden, errClientMismatch
	}

	ack, err := h.syncer.Deliver(ctx, clientID, req.Operation)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOperation) {
			h.logger.Warn("invalid operation", "client_id", clientID, "error", err)
			return nil, http.StatusBadRequest, err
		}
		h.logger.Error("failed to apply operation", "client_id", clientID, "error", err)
		return nil, http.StatusInternalServerError, errors.New("internal server error")
	}
	return ack, http.StatusOK, nil
}
