package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/offsync/pkg/api"
)

// maxMessageSize ограничивает размер одного входящего кадра
const maxMessageSize = 16 << 20

// WSHandler serves envelope exchange and operation delivery over one
// websocket connection per client. Frames are api.WSMessage JSON; every
// response echoes the request id.
type WSHandler struct {
	logger      *slog.Logger
	sync        *SyncHandler
	upgrader    websocket.Upgrader
	idleTimeout time.Duration
}

// NewWSHandler creates a websocket handler on top of the sync handler.
// A connection without frames for idleTimeout is closed; 0 disables the limit.
func NewWSHandler(logger *slog.Logger, sync *SyncHandler, idleTimeout time.Duration) *WSHandler {
	return &WSHandler{
		logger: logger,
		sync:   sync,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Клиенты не браузерные, Origin не проверяем
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		idleTimeout: idleTimeout,
	}
}

// HandleWS обрабатывает GET /api/v1/ws
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	clientID, ok := GetClientID(r.Context())
	if !ok {
		h.logger.Error("client id not found in context")
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warn("websocket upgrade failed", "client_id", clientID, "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)

	h.logger.Info("websocket connected", "client_id", clientID, "remote_addr", r.RemoteAddr)

	ctx := r.Context()
	for {
		if h.idleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.idleTimeout))
		}

		var msg api.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", "client_id", clientID, "error", err)
			}
			h.logger.Info("websocket disconnected", "client_id", clientID)
			return
		}

		resp := h.dispatch(r, clientID, msg)
		resp.ID = msg.ID
		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Warn("websocket write failed", "client_id", clientID, "error", err)
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (h *WSHandler) dispatch(r *http.Request, clientID string, msg api.WSMessage) api.WSMessage {
	switch msg.Type {
	case api.WSTypeSync:
		if msg.Envelope == nil {
			return wsError(errors.New("sync message has no envelope"))
		}
		resp, _, err := h.sync.exchange(r.Context(), clientID, msg.Envelope)
		if err != nil {
			return wsError(err)
		}
		return api.WSMessage{Type: api.WSTypeSync, Envelope: resp}

	case api.WSTypeOp:
		if msg.Deliver == nil {
			return wsError(errors.New("op message has no operation"))
		}
		ack, _, err := h.sync.deliver(r.Context(), clientID, msg.Deliver)
		if err != nil {
			return wsError(err)
		}
		return api.WSMessage{Type: api.WSTypeOp, Ack: ack}

	default:
		h.logger.Warn("unknown websocket message type", "client_id", clientID, "type", msg.Type)
		return wsError(errors.New("unknown message type"))
	}
}

func wsError(err error) api.WSMessage {
	return api.WSMessage{Type: api.WSTypeError, Error: err.Error()}
}
