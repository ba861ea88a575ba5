// Package validation checks identifiers that cross the client/server boundary.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// ClientIDPattern определяет допустимый формат client id
// Латинские буквы, цифры, '_', '-', '.'; длина 1-64 символа
var ClientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

// MaxKeyLen максимальная длина ключа документа в байтах
const MaxKeyLen = 512

var (
	// ErrInvalidClientID indicates a client id that does not match ClientIDPattern
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidKey indicates a document key that cannot be stored
	ErrInvalidKey = errors.New("invalid document key")
)

// ValidateClientID проверяет, что client id соответствует ClientIDPattern
func ValidateClientID(clientID string) error {
	if clientID == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidClientID)
	}
	if !ClientIDPattern.MatchString(clientID) {
		return fmt.Errorf("%w: %q may only contain letters, numbers, '_', '-', '.' and be at most 64 characters", ErrInvalidClientID, clientID)
	}
	return nil
}

// ValidateKey checks that a document key is non-empty UTF-8 without control
// characters and at most MaxKeyLen bytes.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidKey)
	}
	if len(key) > MaxKeyLen {
		return fmt.Errorf("%w: must not exceed %d bytes", ErrInvalidKey, MaxKeyLen)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: must be valid UTF-8", ErrInvalidKey)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control characters are not allowed", ErrInvalidKey)
		}
	}
	return nil
}
