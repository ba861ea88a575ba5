package offline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/client/storage/boltdb"
	"github.com/iudanet/offsync/internal/client/storage/encrypted"
	"github.com/iudanet/offsync/internal/client/storage/memory"
	"github.com/iudanet/offsync/internal/client/storage/sqlite"
	"github.com/iudanet/offsync/internal/config"
)

// OpenStore opens the configured backend. When encryption is enabled the
// backend is wrapped so that every value is sealed with a key derived from passphrase.
func OpenStore(ctx context.Context, cfg *config.Config, passphrase string, logger *slog.Logger) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = memory.New()
	case config.BackendBolt:
		store, err = boltdb.New(ctx, cfg.Storage.Path)
	case config.BackendSQLite:
		store, err = sqlite.New(ctx, cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	if !cfg.Encryption.Enabled {
		return store, nil
	}

	if passphrase == "" {
		_ = store.Close()
		return nil, fmt.Errorf("encryption is enabled but no passphrase was provided")
	}

	enc, err := encrypted.Open(ctx, store, passphrase, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open encrypted storage: %w", err)
	}
	return enc, nil
}
