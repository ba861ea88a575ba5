package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	pinger  Pinger
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, pinger Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		pinger:  pinger,
		version: version,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("storage is unavailable", "error", err)
			writeJSON(w, h.logger, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Version: h.version})
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}
