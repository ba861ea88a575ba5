// Package conflict contains strategies for merging divergent versions of a document.
package conflict

import (
	"encoding/json"
	"fmt"
)

// Strategy names accepted by ByName
const (
	StrategyLastWriteWins = "lww"
	StrategyLocalWins     = "local"
	StrategyFieldMerge    = "merge"
)

// Value is one side of a conflict. Deleted marks a tombstone.
type Value struct {
	Data    json.RawMessage
	Deleted bool
}

// Context identifies the conflicting entity
type Context struct {
	Key           string
	Type          string
	LocalVersion  int64
	RemoteVersion int64
}

// Resolver merges a local and a remote value. Implementations must be pure:
// the same inputs always produce the same output.
type Resolver interface {
	Resolve(local, remote Value, c Context) (Value, error)
}

// ByName returns the resolver registered under name
func ByName(name string) (Resolver, error) {
	switch name {
	case "", StrategyLastWriteWins:
		return LastWriteWins{}, nil
	case StrategyLocalWins:
		return LocalWins{}, nil
	case StrategyFieldMerge:
		return FieldMerge{}, nil
	default:
		return nil, fmt.Errorf("unknown conflict strategy %q", name)
	}
}

// LastWriteWins selects the remote value: the remote write is the later one
// from the point of view of the authority.
type LastWriteWins struct{}

// Resolve returns remote
func (LastWriteWins) Resolve(local, remote Value, c Context) (Value, error) {
	return clone(remote), nil
}

// LocalWins keeps the local value
type LocalWins struct{}

// Resolve returns local
func (LocalWins) Resolve(local, remote Value, c Context) (Value, error) {
	return clone(local), nil
}

// FieldMerge merges two JSON objects key by key, remote keys overriding local
// ones. Anything that is not a pair of live objects resolves to remote.
type FieldMerge struct{}

// Resolve merges local and remote objects
func (FieldMerge) Resolve(local, remote Value, c Context) (Value, error) {
	if local.Deleted || remote.Deleted {
		return clone(remote), nil
	}

	var l, r map[string]json.RawMessage
	if json.Unmarshal(local.Data, &l) != nil || json.Unmarshal(remote.Data, &r) != nil || l == nil || r == nil {
		return clone(remote), nil
	}

	for k, v := range r {
		l[k] = v
	}

	// encoding/json сортирует ключи map, результат детерминирован
	merged, err := json.Marshal(l)
	if err != nil {
		return Value{}, fmt.Errorf("failed to marshal merged value for %s: %w", c.Key, err)
	}
	return Value{Data: merged}, nil
}

func clone(v Value) Value {
	if v.Data == nil {
		return Value{Deleted: v.Deleted}
	}
	return Value{Data: append(json.RawMessage(nil), v.Data...), Deleted: v.Deleted}
}
