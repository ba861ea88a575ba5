package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func TestStorage_SaveAndGetDocument(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := &models.StoredDocument{
		Key:       "note-1",
		Type:      "note",
		Value:     json.RawMessage(`{"title":"a"}`),
		Version:   1,
		UpdatedBy: "client-1",
		UpdatedAt: now,
	}
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "note-1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	// Tombstone теряет значение, но сохраняет версию
	doc.Version = 2
	doc.Deleted = true
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err = s.GetDocument(ctx, "note-1")
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Nil(t, got.Value)
	assert.Equal(t, int64(2), got.Version)
}

func TestStorage_ClientViews(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetClientView(ctx, "client-1", "a")
	assert.ErrorIs(t, err, storage.ErrViewNotFound)

	view := &models.ClientView{ClientID: "client-1", Key: "a", KnownVersion: 3, SeenVersion: 1}
	require.NoError(t, s.SaveClientView(ctx, view))

	view.KnownVersion = 4
	view.SeenVersion = 2
	require.NoError(t, s.SaveClientView(ctx, view))

	got, err := s.GetClientView(ctx, "client-1", "a")
	require.NoError(t, err)
	assert.Equal(t, view, got)

	_, err = s.GetClientView(ctx, "client-2", "a")
	assert.ErrorIs(t, err, storage.ErrViewNotFound)
}

func TestStorage_ListPending(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, doc := range []*models.StoredDocument{
		{Key: "c", Type: "note", Value: json.RawMessage(`3`), Version: 1, UpdatedAt: time.Now()},
		{Key: "a", Type: "note", Value: json.RawMessage(`1`), Version: 2, UpdatedAt: time.Now()},
		{Key: "b", Type: "note", Value: json.RawMessage(`2`), Version: 5, UpdatedAt: time.Now()},
	} {
		require.NoError(t, s.SaveDocument(ctx, doc))
	}

	// client-1 видел "a" в актуальной версии и "b" в устаревшей
	require.NoError(t, s.SaveClientView(ctx, &models.ClientView{ClientID: "client-1", Key: "a", SeenVersion: 2}))
	require.NoError(t, s.SaveClientView(ctx, &models.ClientView{ClientID: "client-1", Key: "b", SeenVersion: 4}))

	pending, err := s.ListPending(ctx, "client-1")
	require.NoError(t, err)
	keys := make([]string, 0, len(pending))
	for _, doc := range pending {
		keys = append(keys, doc.Key)
	}
	assert.Equal(t, []string{"b", "c"}, keys)

	pending, err = s.ListPending(ctx, "client-2")
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestStorage_Operations(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := uuid.New().String()
	_, err := s.GetOperation(ctx, id)
	assert.ErrorIs(t, err, storage.ErrOperationNotFound)

	op := &models.AppliedOperation{
		ID:        id,
		ClientID:  "client-1",
		Key:       "a",
		Type:      models.OperationCreate,
		Version:   1,
		AppliedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, s.RecordOperation(ctx, op))

	got, err := s.GetOperation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, op, got)

	// Повторная запись той же операции отклоняется первичным ключом
	assert.Error(t, s.RecordOperation(ctx, op))
}

func TestStorage_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "server.db")

	s, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveDocument(ctx, &models.StoredDocument{Key: "a", Type: "note", Value: json.RawMessage(`1`), Version: 1, UpdatedAt: time.Now()}))
	require.NoError(t, s.Close())

	// Миграции идемпотентны при повторном открытии
	s, err = New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))
	doc, err := s.GetDocument(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
}
