package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	c, err := NewCipher(key)
	require.NoError(t, err)
	return c
}

func TestNewCipher_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{name: "too short", key: make([]byte, 16)},
		{name: "too long", key: make([]byte, 64)},
		{name: "empty", key: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCipher(tt.key)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "encryption key must be 32 bytes")
		})
	}
}

// TestCipher_RoundTrip проверяет decrypt(encrypt(v)) == v для сериализуемых значений
func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	values := []any{
		map[string]any{"message": "Secret Data", "n": 42.0},
		[]any{"a", 1.0, true, nil},
		"plain string",
		3.14,
		nil,
	}

	for _, v := range values {
		plaintext, err := json.Marshal(v)
		require.NoError(t, err)

		ciphertext, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotContains(t, ciphertext, "Secret Data")

		decrypted, err := c.Decrypt(ciphertext)
		require.NoError(t, err)

		var got any
		require.NoError(t, json.Unmarshal(decrypted, &got))
		assert.Equal(t, v, got)
	}
}

func TestCipher_EmptyPlaintext(t *testing.T) {
	c := newTestCipher(t)

	ciphertext, err := c.Encrypt([]byte{})
	require.NoError(t, err)

	plaintext, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Empty(t, plaintext)
}

func TestCipher_NonceIsRandom(t *testing.T) {
	c := newTestCipher(t)

	a, err := c.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "одинаковый plaintext должен давать разные шифротексты")
}

func TestCipher_DecryptFailures(t *testing.T) {
	c := newTestCipher(t)
	other := newTestCipher(t)

	valid, err := c.Encrypt([]byte("payload"))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(valid)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name       string
		ciphertext string
		cipher     *Cipher
	}{
		{name: "not base64", ciphertext: "%%%", cipher: c},
		{name: "too short", ciphertext: base64.StdEncoding.EncodeToString([]byte("short")), cipher: c},
		{name: "tampered", ciphertext: tampered, cipher: c},
		{name: "wrong key", ciphertext: valid, cipher: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cipher.Decrypt(tt.ciphertext)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecrypt)
		})
	}
}
