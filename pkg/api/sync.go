package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion версия протокола обмена патчами
const ProtocolVersion = "1.0"

// Patch operation kinds.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// ErrInvalidSignature is returned by VerifyEnvelope when the signature does not match.
var ErrInvalidSignature = errors.New("invalid envelope signature")

// PatchOperation представляет одну правку внутри патча
type PatchOperation struct {
	Op    string          `json:"op"`              // add | replace | remove
	Path  string          `json:"path"`            // JSON pointer, "" означает все значение
	Value json.RawMessage `json:"value,omitempty"` // отсутствует для remove
}

// DiffPatch представляет изменение сущности относительно известной базовой версии
type DiffPatch struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Operations  []PatchOperation `json:"operations"`
	BaseVersion int64            `json:"base_version"`
}

// SyncEnvelope единица обмена с сервером за один round trip
type SyncEnvelope struct {
	ProtocolVersion string      `json:"protocol_version"`
	ClientID        string      `json:"client_id"`
	Signature       string      `json:"signature,omitempty"`
	Patches         []DiffPatch `json:"patches"`
	Timestamp       int64       `json:"timestamp"` // unix millis
}

// SignEnvelope вычисляет HMAC-SHA256 подпись по содержимому конверта (без поля Signature)
// и записывает ее в env.Signature в base64.
func SignEnvelope(env *SyncEnvelope, key []byte) error {
	sig, err := envelopeMAC(env, key)
	if err != nil {
		return err
	}
	env.Signature = base64.StdEncoding.EncodeToString(sig)
	return nil
}

// VerifyEnvelope проверяет подпись конверта
func VerifyEnvelope(env *SyncEnvelope, key []byte) error {
	if env.Signature == "" {
		return fmt.Errorf("%w: signature is missing", ErrInvalidSignature)
	}
	got, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	want, err := envelopeMAC(env, key)
	if err != nil {
		return err
	}
	if !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}

func envelopeMAC(env *SyncEnvelope, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("signing key cannot be empty")
	}
	unsigned := *env
	unsigned.Signature = ""
	data, err := json.Marshal(&unsigned)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}
