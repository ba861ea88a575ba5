package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// KeySize - размер ключа AES-256
	KeySize = 32
)

// ErrDecrypt indicates that a ciphertext could not be decoded or authenticated.
// Callers treat it as "value unavailable".
var ErrDecrypt = errors.New("decrypt failed")

//go:generate moq -out transformer_mock.go . Transformer

// Transformer шифрует значения перед записью в хранилище и расшифровывает при чтении
type Transformer interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

// Cipher реализует Transformer на AES-256-GCM.
// Формат шифротекста: base64(nonce (12 bytes) + ciphertext + auth_tag (16 bytes))
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher создает Cipher из 32-байтового ключа (см. DeriveKey)
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{aead: aesGCM}, nil
}

// Encrypt шифрует данные и возвращает результат в Base64
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// GCM автоматически добавляет authentication tag в конец
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt дешифрует строку, полученную из Encrypt.
// Любая ошибка (base64, длина, authentication tag) оборачивает ErrDecrypt.
func (c *Cipher) Decrypt(ciphertext string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64: %v", ErrDecrypt, err)
	}
	if len(sealed) < NonceSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: encrypted data too short", ErrDecrypt)
	}

	plaintext, err := c.aead.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed or corrupted data: %v", ErrDecrypt, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
