// Package encrypted wraps a Store so that values are sealed with AES-GCM
// before they reach the backend.
package encrypted

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/crypto"
)

// SaltKey хранит соль для деривации ключа, не шифруется
const SaltKey = "crypto:salt"

// CheckKey holds a known value sealed with the derived key. It lets Open
// reject a wrong passphrase before anything is read or written.
const CheckKey = "crypto:check"

const (
	reservedPrefix = "crypto:"
	checkValue     = "offsync"
)

// ErrWrongPassphrase indicates that the passphrase does not open the existing store
var ErrWrongPassphrase = errors.New("wrong passphrase")

// Storage encrypts values on Put and decrypts them on Get.
// Keys stay in plain text so prefix listing keeps working.
type Storage struct {
	inner  storage.Store
	cipher crypto.Transformer
	logger *slog.Logger
}

var _ storage.Store = (*Storage)(nil)

// New wraps inner with the given transformer
func New(inner storage.Store, cipher crypto.Transformer, logger *slog.Logger) *Storage {
	return &Storage{inner: inner, cipher: cipher, logger: logger}
}

// Open derives a key from passphrase (salt is created on first use) and wraps inner
func Open(ctx context.Context, inner storage.Store, passphrase string, logger *slog.Logger) (*Storage, error) {
	salt, err := LoadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if err := verifyKey(ctx, inner, c); err != nil {
		return nil, err
	}
	return New(inner, c, logger), nil
}

// verifyKey checks c against the sealed check value, creating it on first
// open. A store without one (written before it existed) is checked against
// any stored value instead.
func verifyKey(ctx context.Context, inner storage.Store, c crypto.Transformer) error {
	sealed, err := inner.Get(ctx, CheckKey)
	switch {
	case err == nil:
		plain, err := c.Decrypt(string(sealed))
		if err != nil || string(plain) != checkValue {
			return ErrWrongPassphrase
		}
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	keys, err := inner.List(ctx, "")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if strings.HasPrefix(k, reservedPrefix) {
			continue
		}
		raw, err := inner.Get(ctx, k)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := c.Decrypt(string(raw)); err != nil {
			return ErrWrongPassphrase
		}
		break
	}

	check, err := c.Encrypt([]byte(checkValue))
	if err != nil {
		return fmt.Errorf("failed to seal check value: %w", err)
	}
	return inner.Put(ctx, CheckKey, []byte(check))
}

// LoadOrCreateSalt returns the persisted salt, generating and storing one if absent
func LoadOrCreateSalt(ctx context.Context, s storage.Store) ([]byte, error) {
	salt, err := s.Get(ctx, SaltKey)
	if err == nil && len(salt) == crypto.SaltSize {
		return salt, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	salt, err = crypto.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := s.Put(ctx, SaltKey, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Init initializes the wrapped store
func (s *Storage) Init(ctx context.Context) error {
	return s.inner.Init(ctx)
}

// Get decrypts the stored value. A single value that cannot be decrypted
// (corrupted on disk) is reported as absent and logged; a wrong key is
// rejected earlier by Open.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	plain, err := s.cipher.Decrypt(string(raw))
	if err != nil {
		s.logger.Warn("failed to decrypt stored value, treating as absent",
			"key", key,
			"error", err,
		)
		return nil, storage.ErrNotFound
	}
	return plain, nil
}

// Put encrypts value and stores the ciphertext
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, reservedPrefix) {
		return fmt.Errorf("key %q uses reserved prefix %q", key, reservedPrefix)
	}

	sealed, err := s.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}
	return s.inner.Put(ctx, key, []byte(sealed))
}

// Delete removes key from the wrapped store
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// List lists keys of the wrapped store, hiding reserved keys
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.inner.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := keys[:0]
	for _, k := range keys {
		if !strings.HasPrefix(k, reservedPrefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Close closes the wrapped store
func (s *Storage) Close() error {
	return s.inner.Close()
}
