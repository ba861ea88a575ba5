package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/offsync/internal/server/service"
	"github.com/iudanet/offsync/internal/server/storage/sqlite"
	"github.com/iudanet/offsync/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupSyncHandler(t *testing.T, signingKey []byte) *SyncHandler {
	t.Helper()
	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewSyncHandler(setupTestLogger(), service.NewSyncService(s, setupTestLogger()), signingKey)
}

func postJSON(t *testing.T, h http.HandlerFunc, path, clientID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	if clientID != "" {
		req = req.WithContext(WithClientID(req.Context(), clientID))
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func newEnvelope(clientID string, patches ...api.DiffPatch) *api.SyncEnvelope {
	return &api.SyncEnvelope{
		ProtocolVersion: api.ProtocolVersion,
		ClientID:        clientID,
		Patches:         patches,
		Timestamp:       time.Now().UnixMilli(),
	}
}

func addPatch(id string, base int64, value string) api.DiffPatch {
	return api.DiffPatch{
		ID:          id,
		BaseVersion: base,
		Operations:  []api.PatchOperation{{Op: api.OpReplace, Path: "", Value: json.RawMessage(value)}},
	}
}

func TestSyncHandler_HandleSync(t *testing.T) {
	h := setupSyncHandler(t, nil)

	w := postJSON(t, h.HandleSync, api.PathSync, "client-1", newEnvelope("client-1", addPatch("a", 1, `{"n":1}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp api.SyncEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.ProtocolVersion, resp.ProtocolVersion)
	assert.Equal(t, "client-1", resp.ClientID)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, "a", resp.Patches[0].ID)
}

func TestSyncHandler_HandleSync_Errors(t *testing.T) {
	h := setupSyncHandler(t, nil)

	tests := []struct {
		body       any
		name       string
		clientID   string
		wantStatus int
	}{
		{name: "unauthorized", body: newEnvelope("client-1"), wantStatus: http.StatusUnauthorized},
		{name: "client mismatch", clientID: "client-2", body: newEnvelope("client-1"), wantStatus: http.StatusForbidden},
		{name: "bad protocol", clientID: "client-1", body: &api.SyncEnvelope{ProtocolVersion: "0.1", ClientID: "client-1"}, wantStatus: http.StatusBadRequest},
		{name: "bad body", clientID: "client-1", body: "not an envelope", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.HandleSync, api.PathSync, tt.clientID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			var errResp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp.Error)
		})
	}

	req := httptest.NewRequest(http.MethodGet, api.PathSync, nil)
	w := httptest.NewRecorder()
	h.HandleSync(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSyncHandler_Signatures(t *testing.T) {
	key := []byte("shared-key")
	h := setupSyncHandler(t, key)

	// Неподписанный конверт отклоняется
	w := postJSON(t, h.HandleSync, api.PathSync, "client-1", newEnvelope("client-1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env := newEnvelope("client-1", addPatch("a", 1, `1`))
	require.NoError(t, api.SignEnvelope(env, key))
	w = postJSON(t, h.HandleSync, api.PathSync, "client-1", env)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SyncEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NoError(t, api.VerifyEnvelope(&resp, key))
}

func TestSyncHandler_HandleOps(t *testing.T) {
	h := setupSyncHandler(t, nil)

	op := api.Operation{ID: uuid.New().String(), Type: "CREATE", Key: "a", Payload: json.RawMessage(`1`)}
	w := postJSON(t, h.HandleOps, api.PathOps, "client-1", api.DeliverRequest{ClientID: "client-1", Operation: op})
	require.Equal(t, http.StatusOK, w.Code)

	var ack api.DeliverResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, op.ID, ack.OperationID)
	assert.Equal(t, int64(1), ack.Version)

	w = postJSON(t, h.HandleOps, api.PathOps, "client-1", api.DeliverRequest{ClientID: "client-1", Operation: op})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, ack.Duplicate)

	w = postJSON(t, h.HandleOps, api.PathOps, "client-1", api.DeliverRequest{Operation: api.Operation{ID: "x", Type: "MOVE", Key: "a"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, h.HandleOps, api.PathOps, "client-2", api.DeliverRequest{ClientID: "client-1", Operation: op})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWSHandler(t *testing.T) {
	h := setupSyncHandler(t, nil)
	ws := NewWSHandler(setupTestLogger(), h, time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.HandleWS(w, r.WithContext(WithClientID(r.Context(), "client-1")))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+api.PathWS, nil)
	require.NoError(t, err)
	defer conn.Close()

	roundTrip := func(msg api.WSMessage) api.WSMessage {
		require.NoError(t, conn.WriteJSON(msg))
		var resp api.WSMessage
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Equal(t, msg.ID, resp.ID)
		return resp
	}

	resp := roundTrip(api.WSMessage{
		ID:      "1",
		Type:    api.WSTypeOp,
		Deliver: &api.DeliverRequest{Operation: api.Operation{ID: "op-1", Type: "CREATE", Key: "a", Payload: json.RawMessage(`1`)}},
	})
	require.Equal(t, api.WSTypeOp, resp.Type)
	require.NotNil(t, resp.Ack)
	assert.Equal(t, "op-1", resp.Ack.OperationID)

	resp = roundTrip(api.WSMessage{ID: "2", Type: api.WSTypeSync, Envelope: newEnvelope("client-1", addPatch("a", 1, `1`))})
	require.Equal(t, api.WSTypeSync, resp.Type)
	require.NotNil(t, resp.Envelope)
	assert.Len(t, resp.Envelope.Patches, 1)

	resp = roundTrip(api.WSMessage{ID: "3", Type: "bogus"})
	assert.Equal(t, api.WSTypeError, resp.Type)
	assert.NotEmpty(t, resp.Error)

	resp = roundTrip(api.WSMessage{ID: "4", Type: api.WSTypeSync})
	assert.Equal(t, api.WSTypeError, resp.Type)
}

func TestWSHandler_Unauthorized(t *testing.T) {
	ws := NewWSHandler(setupTestLogger(), setupSyncHandler(t, nil), 0)

	w := httptest.NewRecorder()
	ws.HandleWS(w, httptest.NewRequest(http.MethodGet, api.PathWS, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		pingErr    error
		name       string
		wantStatus string
		wantCode   int
	}{
		{name: "healthy", wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "storage down", pingErr: errors.New("disk gone"), wantCode: http.StatusServiceUnavailable, wantStatus: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(setupTestLogger(), pingFunc(func(ctx context.Context) error { return tt.pingErr }), "1.2.3")

			w := httptest.NewRecorder()
			handler.Health(w, httptest.NewRequest(http.MethodGet, api.PathHealth, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var healthResp HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&healthResp))
			assert.Equal(t, tt.wantStatus, healthResp.Status)
			assert.Equal(t, "1.2.3", healthResp.Version)
		})
	}
}
