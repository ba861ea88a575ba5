// Package docs stores versioned documents on top of a storage.Store.
package docs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/models"
)

// KeyPrefix is the store prefix under which documents are kept
const KeyPrefix = "doc:"

// FloorPrefix is the store prefix for the last version of an evicted document
const FloorPrefix = "docfloor:"

// StoreKey returns the store key for a document key
func StoreKey(key string) string {
	return KeyPrefix + key
}

// Repository is a typed document layer. All read-modify-write paths are
// serialized so that a local write and a remote patch never interleave.
type Repository struct {
	store storage.Store
	now   func() time.Time
	mu    sync.Mutex
}

// New creates a repository over store
func New(store storage.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Get returns the document, including tombstones, or storage.ErrNotFound
func (r *Repository) Get(ctx context.Context, key string) (*models.Document, error) {
	data, err := r.store.Get(ctx, StoreKey(key))
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", key, err)
	}
	return &doc, nil
}

// Save persists doc. The stored version must strictly increase.
func (r *Repository) Save(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, doc)
}

// Update runs fn against the current document (nil if absent) and saves the
// result under the repository lock. Returning a nil document skips the write.
func (r *Repository) Update(ctx context.Context, key string, fn func(cur *models.Document) (*models.Document, error)) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.Get(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return cur, nil
	}
	if next.Key == "" {
		next.Key = key
	}

	if err := r.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Write records a local write: version+1 (above the eviction floor for a new key), dirty.
func (r *Repository) Write(ctx context.Context, key, docType string, value json.RawMessage) (*models.Document, error) {
	if !json.Valid(value) {
		return nil, ErrInvalidValue
	}
	if docType == "" {
		docType = models.DefaultDocumentType
	}

	return r.Update(ctx, key, func(cur *models.Document) (*models.Document, error) {
		next := &models.Document{
			Key:       key,
			Type:      docType,
			Value:     append(json.RawMessage(nil), value...),
			Dirty:     true,
			UpdatedAt: r.now().UTC(),
		}
		if cur != nil {
			next.Version = cur.Version + 1
			next.LastSyncedAt = cur.LastSyncedAt
			return next, nil
		}

		// после вытеснения нумерация продолжается с последней версии
		floor, err := r.VersionFloor(ctx, key)
		if err != nil {
			return nil, err
		}
		next.Version = floor + 1
		return next, nil
	})
}

// Delete records a local deletion as a dirty tombstone.
// Deleting a tombstone is a no-op.
func (r *Repository) Delete(ctx context.Context, key string) (*models.Document, error) {
	return r.Update(ctx, key, func(cur *models.Document) (*models.Document, error) {
		if cur == nil {
			return nil, storage.ErrNotFound
		}
		if cur.Deleted {
			return nil, nil
		}

		next := cur.Clone()
		next.Value = nil
		next.Version++
		next.Dirty = true
		next.Deleted = true
		next.UpdatedAt = r.now().UTC()
		return next, nil
	})
}

// RemoveIfClean evicts a document that has no unsynced changes. The check and
// the removal happen under the repository lock, so a concurrent Write either
// lands before (and the document is kept) or after (and starts from the
// evicted version). The last version is remembered as the key's floor.
// Reports whether the document was removed.
func (r *Repository) RemoveIfClean(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if doc.Dirty {
		return false, nil
	}

	if err := r.store.Put(ctx, FloorPrefix+key, []byte(strconv.FormatInt(doc.Version, 10))); err != nil {
		return false, fmt.Errorf("failed to save version floor for %s: %w", key, err)
	}
	if err := r.store.Delete(ctx, StoreKey(key)); err != nil {
		return false, err
	}
	return true, nil
}

// VersionFloor returns the version the key had when it was last evicted,
// 0 if it never was. A recreated document must be numbered above it.
func (r *Repository) VersionFloor(ctx context.Context, key string) (int64, error) {
	data, err := r.store.Get(ctx, FloorPrefix+key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	floor, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version floor for %s: %w", key, err)
	}
	return floor, nil
}

// List returns all documents ordered by key
func (r *Repository) List(ctx context.Context) ([]*models.Document, error) {
	keys, err := r.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Document, 0, len(keys))
	for _, k := range keys {
		doc, err := r.Get(ctx, strings.TrimPrefix(k, KeyPrefix))
		if errors.Is(err, storage.ErrNotFound) {
			// удален между List и Get либо не расшифровался
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// ListDirty returns documents with unsynced local changes
func (r *Repository) ListDirty(ctx context.Context) ([]*models.Document, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	dirty := all[:0]
	for _, doc := range all {
		if doc.Dirty {
			dirty = append(dirty, doc)
		}
	}
	return dirty, nil
}

// IsDirty reports whether key has unsynced local changes. Missing keys are clean.
func (r *Repository) IsDirty(ctx context.Context, key string) (bool, error) {
	doc, err := r.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return doc.Dirty, nil
}

func (r *Repository) save(ctx context.Context, doc *models.Document) error {
	if doc.Key == "" {
		return fmt.Errorf("document key cannot be empty")
	}

	cur, err := r.Get(ctx, doc.Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		floor, err := r.VersionFloor(ctx, doc.Key)
		if err != nil {
			return err
		}
		if doc.Version <= floor {
			return fmt.Errorf("%w: %s floor %d, got %d", ErrVersionNotBumped, doc.Key, floor, doc.Version)
		}
	case err != nil:
		return err
	default:
		if doc.Version <= cur.Version {
			return fmt.Errorf("%w: %s stored %d, got %d", ErrVersionNotBumped, doc.Key, cur.Version, doc.Version)
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return r.store.Put(ctx, StoreKey(doc.Key), data)
}
