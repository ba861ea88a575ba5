package api

import (
	"encoding/json"
	"time"
)

// Operation представляет операцию из очереди мутаций клиента в API формате
type Operation struct {
	EnqueuedAt time.Time       `json:"enqueued_at"`
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// DeliverRequest запрос на доставку одной операции
type DeliverRequest struct {
	ClientID  string    `json:"client_id"`
	Operation Operation `json:"operation"`
}

// DeliverResponse подтверждение доставки операции
type DeliverResponse struct {
	OperationID string `json:"operation_id"`
	Version     int64  `json:"version"`   // версия документа на сервере после применения
	Duplicate   bool   `json:"duplicate"` // операция уже была применена ранее
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
