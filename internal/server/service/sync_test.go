package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/offsync/internal/server/storage/sqlite"
	"github.com/iudanet/offsync/pkg/api"
)

func setupService(t *testing.T) *SyncService {
	t.Helper()
	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewSyncService(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func envelope(patches ...api.DiffPatch) *api.SyncEnvelope {
	return &api.SyncEnvelope{ProtocolVersion: api.ProtocolVersion, Patches: patches}
}

func replace(id string, base int64, value string) api.DiffPatch {
	return api.DiffPatch{
		ID:          id,
		Type:        "note",
		BaseVersion: base,
		Operations:  []api.PatchOperation{{Op: api.OpReplace, Path: "", Value: json.RawMessage(value)}},
	}
}

func remove(id string, base int64) api.DiffPatch {
	return api.DiffPatch{ID: id, BaseVersion: base, Operations: []api.PatchOperation{{Op: api.OpRemove, Path: ""}}}
}

func TestSyncService_AcceptNewDocument(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	resp, stats, err := svc.Exchange(ctx, "client-1", envelope(replace("a", 1, `{"n":1}`)))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, api.ProtocolVersion, resp.ProtocolVersion)

	require.Len(t, resp.Patches, 1)
	echo := resp.Patches[0]
	assert.Equal(t, int64(1), echo.BaseVersion)
	// replace несуществующего документа превращается в add
	assert.Equal(t, api.OpAdd, echo.Operations[0].Op)

	// Повторный обмен без изменений пуст
	resp, _, err = svc.Exchange(ctx, "client-1", envelope())
	require.NoError(t, err)
	assert.Empty(t, resp.Patches)
}

func TestSyncService_PullForOtherClient(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, _, err := svc.Exchange(ctx, "client-1", envelope(replace("a", 1, `"v1"`)))
	require.NoError(t, err)

	resp, stats, err := svc.Exchange(ctx, "client-2", envelope())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pulled)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, int64(0), resp.Patches[0].BaseVersion)
	assert.Equal(t, api.OpAdd, resp.Patches[0].Operations[0].Op)
	assert.JSONEq(t, `"v1"`, string(resp.Patches[0].Operations[0].Value))

	// client-1 пишет снова, client-2 получает патч от своей версии 1
	_, _, err = svc.Exchange(ctx, "client-1", envelope(replace("a", 2, `"v2"`)))
	require.NoError(t, err)

	resp, _, err = svc.Exchange(ctx, "client-2", envelope())
	require.NoError(t, err)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, int64(1), resp.Patches[0].BaseVersion)
}

func TestSyncService_StalePushRejected(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, _, err := svc.Exchange(ctx, "client-1", envelope(replace("a", 1, `"one"`)))
	require.NoError(t, err)
	_, _, err = svc.Exchange(ctx, "client-2", envelope())
	require.NoError(t, err)

	// client-1 обновляет, client-2 пишет поверх устаревшей версии
	_, _, err = svc.Exchange(ctx, "client-1", envelope(replace("a", 2, `"one-b"`)))
	require.NoError(t, err)

	resp, stats, err := svc.Exchange(ctx, "client-2", envelope(replace("a", 2, `"two"`)))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rejected)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, int64(1), resp.Patches[0].BaseVersion)
	assert.JSONEq(t, `"one-b"`, string(resp.Patches[0].Operations[0].Value))

	// После разрешения клиент на max(2, 2)+1 = 3 и может писать дальше
	resp, stats, err = svc.Exchange(ctx, "client-2", envelope(replace("a", 3, `"two-b"`)))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Accepted)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, int64(3), resp.Patches[0].BaseVersion)
}

func TestSyncService_Deletes(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, _, err := svc.Exchange(ctx, "client-1", envelope(replace("a", 1, `1`)))
	require.NoError(t, err)
	_, _, err = svc.Exchange(ctx, "client-2", envelope())
	require.NoError(t, err)

	resp, stats, err := svc.Exchange(ctx, "client-1", envelope(remove("a", 3)))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Accepted)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, api.OpRemove, resp.Patches[0].Operations[0].Op)

	resp, _, err = svc.Exchange(ctx, "client-2", envelope())
	require.NoError(t, err)
	require.Len(t, resp.Patches, 1)
	assert.Equal(t, api.OpRemove, resp.Patches[0].Operations[0].Op)

	// Новый клиент не получает удаления неизвестных ему документов
	resp, _, err = svc.Exchange(ctx, "client-3", envelope())
	require.NoError(t, err)
	assert.Empty(t, resp.Patches)
}

func TestSyncService_MalformedSkipped(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	bad := api.DiffPatch{ID: "a", BaseVersion: 1, Operations: []api.PatchOperation{{Op: api.OpReplace, Path: "/x", Value: json.RawMessage(`1`)}}}
	resp, stats, err := svc.Exchange(ctx, "client-1", envelope(bad, api.DiffPatch{}))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Malformed)
	assert.Empty(t, resp.Patches)
}

func TestSyncService_Deliver(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	op := api.Operation{ID: uuid.New().String(), Type: "CREATE", Key: "a", Payload: json.RawMessage(`{"n":1}`)}
	ack, err := svc.Deliver(ctx, "client-1", op)
	require.NoError(t, err)
	assert.Equal(t, op.ID, ack.OperationID)
	assert.Equal(t, int64(1), ack.Version)
	assert.False(t, ack.Duplicate)

	// Повторная доставка идемпотентна
	ack, err = svc.Deliver(ctx, "client-1", op)
	require.NoError(t, err)
	assert.True(t, ack.Duplicate)
	assert.Equal(t, int64(1), ack.Version)

	del := api.Operation{ID: uuid.New().String(), Type: "DELETE", Key: "a"}
	ack, err = svc.Deliver(ctx, "client-1", del)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ack.Version)

	// Удаление отсутствующего документа не меняет версию
	ack, err = svc.Deliver(ctx, "client-1", api.Operation{ID: uuid.New().String(), Type: "DELETE", Key: "missing"})
	require.NoError(t, err)
	assert.Zero(t, ack.Version)

	_, err = svc.Deliver(ctx, "client-1", api.Operation{ID: uuid.New().String(), Type: "PATCH", Key: "a"})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = svc.Deliver(ctx, "client-1", api.Operation{ID: uuid.New().String(), Type: "UPDATE", Key: "a"})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestSyncService_DeliverThenPush(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Deliver(ctx, "client-1", api.Operation{ID: uuid.New().String(), Type: "CREATE", Key: "a", Payload: json.RawMessage(`1`)})
	require.NoError(t, err)

	// Своя доставленная запись не делает push устаревшим
	_, stats, err := svc.Exchange(ctx, "client-1", envelope(replace("a", 1, `1`)))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Accepted)
}
