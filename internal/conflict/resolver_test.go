package conflict

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvers_Deterministic(t *testing.T) {
	local := Value{Data: json.RawMessage(`{"a":1,"b":2}`)}
	remote := Value{Data: json.RawMessage(`{"b":3,"c":4}`)}
	c := Context{Key: "doc:1", LocalVersion: 3, RemoteVersion: 2}

	for _, r := range []Resolver{LastWriteWins{}, LocalWins{}, FieldMerge{}} {
		first, err := r.Resolve(local, remote, c)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := r.Resolve(local, remote, c)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestLastWriteWins(t *testing.T) {
	got, err := LastWriteWins{}.Resolve(
		Value{Data: json.RawMessage(`"local"`)},
		Value{Data: json.RawMessage(`"remote"`)},
		Context{Key: "k"},
	)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"remote"`), got.Data)
	assert.False(t, got.Deleted)

	got, err = LastWriteWins{}.Resolve(Value{Data: json.RawMessage(`1`)}, Value{Deleted: true}, Context{})
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}

func TestLocalWins(t *testing.T) {
	got, err := LocalWins{}.Resolve(
		Value{Data: json.RawMessage(`"local"`)},
		Value{Data: json.RawMessage(`"remote"`)},
		Context{},
	)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"local"`), got.Data)
}

func TestFieldMerge(t *testing.T) {
	tests := []struct {
		name        string
		local       Value
		remote      Value
		want        string
		wantDeleted bool
	}{
		{
			name:   "objects merged remote overrides",
			local:  Value{Data: json.RawMessage(`{"a":1,"b":2}`)},
			remote: Value{Data: json.RawMessage(`{"b":3,"c":4}`)},
			want:   `{"a":1,"b":3,"c":4}`,
		},
		{
			name:   "non-object falls back to remote",
			local:  Value{Data: json.RawMessage(`[1,2]`)},
			remote: Value{Data: json.RawMessage(`{"x":1}`)},
			want:   `{"x":1}`,
		},
		{
			name:        "remote tombstone wins",
			local:       Value{Data: json.RawMessage(`{"a":1}`)},
			remote:      Value{Deleted: true},
			wantDeleted: true,
		},
		{
			name:   "local tombstone resolves to remote",
			local:  Value{Deleted: true},
			remote: Value{Data: json.RawMessage(`{"a":1}`)},
			want:   `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FieldMerge{}.Resolve(tt.local, tt.remote, Context{Key: "k"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, got.Deleted)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, string(got.Data))
			}
		})
	}
}

func TestByName(t *testing.T) {
	r, err := ByName("")
	require.NoError(t, err)
	assert.IsType(t, LastWriteWins{}, r)

	r, err = ByName(StrategyFieldMerge)
	require.NoError(t, err)
	assert.IsType(t, FieldMerge{}, r)

	_, err = ByName("random")
	assert.Error(t, err)
}
