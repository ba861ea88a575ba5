package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iudanet/offsync/internal/client/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is a client Store backed by a single SQLite kv table
type Storage struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ storage.Store = (*Storage)(nil)

// New creates a new SQLite storage instance
// Use ":memory:" for in-memory database (useful for testing)
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Один писатель; для ":memory:" еще и единственная база
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{db: db}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Init runs embedded migrations
func (s *Storage) Init(ctx context.Context) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations)
	if err != nil {
		return storage.Unavailable("init", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return storage.Unavailable("migrate", err)
	}
	return nil
}

// Get returns the value stored under key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, storage.Unavailable("get", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Put upserts value under key
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return storage.Unavailable("put", err)
	}
	return nil
}

// Delete removes key
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return storage.Unavailable("delete", err)
	}
	return nil
}

// List returns keys with the given prefix ordered by key
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	// Диапазон вместо LIKE: в ключах могут встречаться % и _
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key >= ? ORDER BY key`, prefix)
	if err != nil {
		return nil, storage.Unavailable("list", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, storage.Unavailable("list scan", err)
		}
		if !strings.HasPrefix(k, prefix) {
			break
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("list rows", err)
	}
	return keys, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
