// Package patch applies add/replace/remove edits to JSON values.
// The same rules are used by the client when applying remote patches and by
// the reference server when applying pushed ones.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/iudanet/offsync/pkg/api"
)

// ErrMalformed indicates that a patch cannot be applied to the value:
// unknown op, bad path, missing value or a path that does not exist.
var ErrMalformed = errors.New("malformed patch")

// Apply применяет операции по порядку к value и возвращает новое значение.
// Операции применяются атомарно: при ошибке любой из них исходное значение
// не изменяется (Apply работает с копией).
// deleted говорит, что документ сейчас является tombstone (значения нет).
// Remove по корневому пути превращает документ в tombstone.
func Apply(value json.RawMessage, deleted bool, ops []api.PatchOperation) (json.RawMessage, bool, error) {
	if len(ops) == 0 {
		return nil, false, fmt.Errorf("%w: patch has no operations", ErrMalformed)
	}

	cur := value
	exists := !deleted && len(value) > 0

	for i, op := range ops {
		if err := validate(op); err != nil {
			return nil, false, fmt.Errorf("operation %d: %w", i, err)
		}

		if isRoot(op.Path) {
			switch op.Op {
			case api.OpAdd:
				cur, exists = clone(op.Value), true
			case api.OpReplace:
				if !exists {
					return nil, false, fmt.Errorf("operation %d: %w: replace of missing document", i, ErrMalformed)
				}
				cur = clone(op.Value)
			case api.OpRemove:
				if !exists {
					return nil, false, fmt.Errorf("operation %d: %w: remove of missing document", i, ErrMalformed)
				}
				cur, exists = nil, false
			}
			continue
		}

		// Вложенный путь требует существующего документа
		if !exists {
			return nil, false, fmt.Errorf("operation %d: %w: path %q on missing document", i, ErrMalformed, op.Path)
		}

		next, err := applyNested(cur, op)
		if err != nil {
			return nil, false, fmt.Errorf("operation %d: %w: %v", i, ErrMalformed, err)
		}
		cur = next
	}

	if !exists {
		return nil, true, nil
	}
	return cur, false, nil
}

// FullReplace builds the single whole-value operation used when field-level
// diffing is not needed. A nil value (deleted document) becomes a root remove.
func FullReplace(value json.RawMessage, deleted bool) []api.PatchOperation {
	if deleted {
		return []api.PatchOperation{{Op: api.OpRemove, Path: ""}}
	}
	return []api.PatchOperation{{Op: api.OpReplace, Path: "", Value: clone(value)}}
}

// IsDeletion reports whether ops is a single root remove
func IsDeletion(ops []api.PatchOperation) bool {
	return len(ops) == 1 && ops[0].Op == api.OpRemove && isRoot(ops[0].Path)
}

// FullAdd builds the whole-value operation for an entity the receiver does not have yet.
func FullAdd(value json.RawMessage) []api.PatchOperation {
	return []api.PatchOperation{{Op: api.OpAdd, Path: "", Value: clone(value)}}
}

func validate(op api.PatchOperation) error {
	switch op.Op {
	case api.OpAdd, api.OpReplace:
		if len(bytes.TrimSpace(op.Value)) == 0 {
			return fmt.Errorf("%w: %s requires a value", ErrMalformed, op.Op)
		}
		if !json.Valid(op.Value) {
			return fmt.Errorf("%w: %s value is not valid JSON", ErrMalformed, op.Op)
		}
	case api.OpRemove:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrMalformed, op.Op)
	}

	if !isRoot(op.Path) && !strings.HasPrefix(op.Path, "/") {
		return fmt.Errorf("%w: path %q must start with '/'", ErrMalformed, op.Path)
	}
	return nil
}

func isRoot(path string) bool {
	return path == "" || path == "/"
}

func applyNested(doc json.RawMessage, op api.PatchOperation) (json.RawMessage, error) {
	raw, err := json.Marshal([]api.PatchOperation{op})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation: %w", err)
	}
	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return nil, err
	}
	out, err := p.Apply(doc)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func clone(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
