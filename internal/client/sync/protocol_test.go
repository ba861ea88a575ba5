package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/offsync/internal/client/docs"
	"github.com/iudanet/offsync/internal/client/storage/memory"
	"github.com/iudanet/offsync/internal/conflict"
	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProtocol(t *testing.T, resolver conflict.Resolver) (*Protocol, *docs.Repository) {
	t.Helper()
	repo := docs.New(memory.New())
	return NewProtocol(repo, resolver, testLogger()), repo
}

func replacePatch(id string, base int64, value string) api.DiffPatch {
	return api.DiffPatch{
		ID:          id,
		Type:        "note",
		BaseVersion: base,
		Operations:  []api.PatchOperation{{Op: api.OpReplace, Path: "", Value: json.RawMessage(value)}},
	}
}

func TestProtocol_ApplyPatch(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 1, Value: json.RawMessage(`{"n":1}`)}))

	doc, err := p.ApplyPatch(ctx, replacePatch("a", 1, `{"n":2}`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.False(t, doc.Dirty)
	assert.False(t, doc.LastSyncedAt.IsZero())

	stored, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(stored.Value))
	assert.Equal(t, "note", stored.Type)
}

func TestProtocol_ApplyPatch_NewDocument(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProtocol(t, conflict.LastWriteWins{})

	doc, err := p.ApplyPatch(ctx, api.DiffPatch{
		ID:          "new",
		Operations:  []api.PatchOperation{{Op: api.OpAdd, Path: "", Value: json.RawMessage(`[1]`)}},
		BaseVersion: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, models.DefaultDocumentType, doc.Type)
}

func TestProtocol_ApplyPatch_VersionConflict(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 3, Value: json.RawMessage(`1`)}))

	_, err := p.ApplyPatch(ctx, replacePatch("a", 2, `2`))
	require.ErrorIs(t, err, ErrVersionConflict)

	var vce *VersionConflictError
	require.True(t, errors.As(err, &vce))
	assert.Equal(t, int64(3), vce.LocalVersion)
	assert.Equal(t, int64(2), vce.BaseVersion)

	stored, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Version)
}

func TestProtocol_ApplyPatch_MalformedLeavesDocument(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 1, Value: json.RawMessage(`{"x":1,"y":2}`)}))

	tests := []struct {
		name string
		ops  []api.PatchOperation
	}{
		{name: "no operations", ops: nil},
		{name: "relative path", ops: []api.PatchOperation{{Op: api.OpRemove, Path: "x"}}},
		{name: "replace without value", ops: []api.PatchOperation{{Op: api.OpReplace, Path: "/x"}}},
		{
			name: "second op fails",
			ops: []api.PatchOperation{
				{Op: api.OpReplace, Path: "/x", Value: json.RawMessage(`10`)},
				{Op: api.OpRemove, Path: "/missing"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ApplyPatch(ctx, api.DiffPatch{ID: "a", BaseVersion: 1, Operations: tt.ops})
			assert.ErrorIs(t, err, ErrMalformedPatch)

			stored, err := repo.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.Version)
			assert.JSONEq(t, `{"x":1,"y":2}`, string(stored.Value))
		})
	}
}

func TestProtocol_VersionMonotonic(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	var last int64
	for i := 0; i < 5; i++ {
		doc, err := p.ApplyPatch(ctx, api.DiffPatch{
			ID:          "a",
			BaseVersion: last,
			Operations:  []api.PatchOperation{{Op: api.OpAdd, Path: "", Value: json.RawMessage(`{}`)}},
		})
		require.NoError(t, err)
		assert.Greater(t, doc.Version, last)
		last = doc.Version

		// Локальная запись между патчами тоже только увеличивает версию
		w, err := repo.Write(ctx, "a", "", json.RawMessage(`{"local":true}`))
		require.NoError(t, err)
		assert.Greater(t, w.Version, last)
		last = w.Version
	}
}

func TestProtocol_ResolveConflict_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 4, Dirty: true, Value: json.RawMessage(`"local"`)}))

	doc, err := p.ResolveConflict(ctx, replacePatch("a", 1, `"remote"`))
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"remote"`), doc.Value)
	// max(4, 1+1)+1
	assert.Equal(t, int64(5), doc.Version)
	assert.False(t, doc.Dirty)
}

func TestProtocol_ResolveConflict_RemoteAhead(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 2, Dirty: true, Value: json.RawMessage(`1`)}))

	doc, err := p.ResolveConflict(ctx, replacePatch("a", 6, `2`))
	require.NoError(t, err)
	// max(2, 6+1)+1
	assert.Equal(t, int64(8), doc.Version)
}

func TestProtocol_ResolveConflict_MergeStaysDirty(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.FieldMerge{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 2, Dirty: true, Value: json.RawMessage(`{"a":1}`)}))

	doc, err := p.ResolveConflict(ctx, replacePatch("a", 1, `{"b":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":2}`, string(doc.Value))
	assert.True(t, doc.Dirty)
}

func TestProtocol_PreparePatches(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	_, err := repo.Write(ctx, "a", "note", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	_, err = repo.Write(ctx, "b", "", json.RawMessage(`2`))
	require.NoError(t, err)
	_, err = repo.Delete(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, &models.Document{Key: "clean", Version: 1, Value: json.RawMessage(`0`)}))

	patches, err := p.PreparePatches(ctx)
	require.NoError(t, err)
	require.Len(t, patches, 2)

	assert.Equal(t, "a", patches[0].ID)
	assert.Equal(t, int64(1), patches[0].BaseVersion)
	require.Len(t, patches[0].Operations, 1)
	assert.Equal(t, api.OpReplace, patches[0].Operations[0].Op)
	assert.JSONEq(t, `{"v":1}`, string(patches[0].Operations[0].Value))

	assert.Equal(t, "b", patches[1].ID)
	assert.Equal(t, int64(2), patches[1].BaseVersion)
	assert.Equal(t, api.OpRemove, patches[1].Operations[0].Op)
}

func TestProtocol_Envelope(t *testing.T) {
	p, _ := newTestProtocol(t, conflict.LastWriteWins{})
	key := []byte("secret")

	env, err := p.BuildEnvelope("client-1", nil, key)
	require.NoError(t, err)
	assert.Equal(t, api.ProtocolVersion, env.ProtocolVersion)
	assert.NotEmpty(t, env.Signature)
	assert.NoError(t, p.CheckEnvelope(env, key))

	env.ClientID = "tampered"
	assert.ErrorIs(t, p.CheckEnvelope(env, key), api.ErrInvalidSignature)

	assert.Error(t, p.CheckEnvelope(&api.SyncEnvelope{ProtocolVersion: "0.1"}, nil))
	assert.Error(t, p.CheckEnvelope(nil, nil))
}

func TestProtocol_ApplyPatch_DeletionAcknowledged(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	_, err := repo.Write(ctx, "a", "", json.RawMessage(`1`))
	require.NoError(t, err)
	tomb, err := repo.Delete(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(2), tomb.Version)

	doc, err := p.ApplyPatch(ctx, api.DiffPatch{
		ID:          "a",
		BaseVersion: 2,
		Operations:  []api.PatchOperation{{Op: api.OpRemove, Path: ""}},
	})
	require.NoError(t, err)
	assert.True(t, doc.Deleted)
	assert.False(t, doc.Dirty)
	assert.Equal(t, int64(3), doc.Version)
}

func TestProtocol_AcknowledgePush(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	_, err := repo.Write(ctx, "a", "note", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	sent, err := p.PreparePatches(ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)

	// Документ еще на отправленной версии: эхо применяет ApplyPatch
	echo := sent[0]
	echo.Operations = []api.PatchOperation{{Op: api.OpReplace, Path: "", Value: json.RawMessage(`{ "a": 1 }`)}}
	acked, err := p.AcknowledgePush(ctx, sent[0], echo)
	require.NoError(t, err)
	assert.False(t, acked)

	// Запись во время обмена
	_, err = repo.Write(ctx, "a", "note", json.RawMessage(`{"a":2}`))
	require.NoError(t, err)

	acked, err = p.AcknowledgePush(ctx, sent[0], echo)
	require.NoError(t, err)
	assert.True(t, acked)

	doc, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(doc.Value))
	assert.Equal(t, int64(2), doc.Version)
	assert.True(t, doc.Dirty)

	// Другое значение сервера не является эхом
	other := replacePatch("a", sent[0].BaseVersion, `{"a":9}`)
	acked, err = p.AcknowledgePush(ctx, sent[0], other)
	require.NoError(t, err)
	assert.False(t, acked)
}

func TestProtocol_ApplyPatch_AfterEviction(t *testing.T) {
	ctx := context.Background()
	p, repo := newTestProtocol(t, conflict.LastWriteWins{})

	require.NoError(t, repo.Save(ctx, &models.Document{Key: "a", Version: 4, Value: json.RawMessage(`1`)}))
	removed, err := repo.RemoveIfClean(ctx, "a")
	require.NoError(t, err)
	require.True(t, removed)

	doc, err := p.ApplyPatch(ctx, api.DiffPatch{
		ID:          "a",
		BaseVersion: 4,
		Operations:  []api.PatchOperation{{Op: api.OpAdd, Path: "", Value: json.RawMessage(`2`)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), doc.Version)
	assert.JSONEq(t, `2`, string(doc.Value))
}
