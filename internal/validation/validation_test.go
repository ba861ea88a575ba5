package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientID(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		wantErr  bool
	}{
		{name: "valid - lowercase", clientID: "alice"},
		{name: "valid - with dash and dot", clientID: "laptop-01.home"},
		{name: "valid - single char", clientID: "a"},
		{name: "valid - max length", clientID: strings.Repeat("a", 64)},
		{name: "invalid - empty", clientID: "", wantErr: true},
		{name: "invalid - too long", clientID: strings.Repeat("a", 65), wantErr: true},
		{name: "invalid - space", clientID: "alice smith", wantErr: true},
		{name: "invalid - slash", clientID: "alice/bob", wantErr: true},
		{name: "invalid - cyrillic", clientID: "алиса", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClientID(tt.clientID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidClientID)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid - simple", key: "note-1"},
		{name: "valid - path like", key: "users/42/profile"},
		{name: "valid - unicode", key: "заметка"},
		{name: "valid - max length", key: strings.Repeat("k", MaxKeyLen)},
		{name: "invalid - empty", key: "", wantErr: true},
		{name: "invalid - too long", key: strings.Repeat("k", MaxKeyLen+1), wantErr: true},
		{name: "invalid - newline", key: "a\nb", wantErr: true},
		{name: "invalid - broken utf8", key: "a\xffb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}
