package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// OperationType тип операции в очереди мутаций
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

// Validate checks that the type is one of the known operation types.
func (t OperationType) Validate() error {
	switch t {
	case OperationCreate, OperationUpdate, OperationDelete:
		return nil
	default:
		return fmt.Errorf("unknown operation type %q", string(t))
	}
}

// Operation представляет намерение, которое нужно доставить на сервер.
// Удаляется из очереди только после подтверждения сервером
// либо переносится в dead-letter, но никогда не теряется молча.
type Operation struct {
	EnqueuedAt time.Time       `json:"enqueued_at"`
	ID         string          `json:"id"`
	Type       OperationType   `json:"type"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RetryCount int             `json:"retry_count"`
}

// DeadLetter is an operation that exhausted its delivery attempts and was
// moved out of the pending queue by the host.
type DeadLetter struct {
	MovedAt   time.Time `json:"moved_at"`
	Reason    string    `json:"reason"`
	Operation Operation `json:"operation"`
}
