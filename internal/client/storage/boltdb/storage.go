package boltdb

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/offsync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketKV = []byte("kv")
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db     *bbolt.DB
	closed atomic.Bool
}

var _ storage.Store = (*Storage)(nil)

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB; timeout чтобы не зависнуть на чужом file lock
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	// Инициализируем buckets
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Init создает необходимые buckets если они не существуют
func (s *Storage) Init(ctx context.Context) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketKV); err != nil {
			return fmt.Errorf("failed to create kv bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("init", err)
	}
	return nil
}

// Get returns a copy of the value stored under key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketKV)
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}

		// Данные валидны только внутри транзакции, копируем
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("get", err)
	}
	if value == nil {
		return nil, storage.ErrNotFound
	}

	return value, nil
}

// Put stores value under key
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketKV)
		}
		if value == nil {
			value = []byte{}
		}
		return bucket.Put([]byte(key), value)
	})
	if err != nil {
		return storage.Unavailable("put", err)
	}
	return nil
}

// Delete removes key, missing keys are ignored
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketKV)
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return storage.Unavailable("delete", err)
	}
	return nil
}

// List returns keys with the given prefix in byte order
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	keys := make([]string, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketKV)
		}

		p := []byte(prefix)
		c := bucket.Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("list", err)
	}

	return keys, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
