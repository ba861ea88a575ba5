package models

import (
	"encoding/json"
	"time"
)

// StoredDocument представляет серверную копию документа.
// Version увеличивается при каждой принятой записи от любого клиента.
type StoredDocument struct {
	UpdatedAt time.Time       `json:"updated_at"`
	Key       string          `json:"key"`
	Type      string          `json:"type"`
	UpdatedBy string          `json:"updated_by"` // UpdatedBy клиент, сделавший последнюю запись
	Value     json.RawMessage `json:"value,omitempty"`
	Version   int64           `json:"version"`
	Deleted   bool            `json:"deleted"`
}

// ClientView хранит, что конкретный клиент знает о документе
type ClientView struct {
	ClientID     string `json:"client_id"`
	Key          string `json:"key"`
	KnownVersion int64  `json:"known_version"` // KnownVersion локальная версия документа у клиента
	SeenVersion  int64  `json:"seen_version"`  // SeenVersion последняя серверная версия, которую видел клиент
}

// AppliedOperation фиксирует доставленную операцию очереди для идемпотентности
type AppliedOperation struct {
	AppliedAt time.Time     `json:"applied_at"`
	ID        string        `json:"id"`
	ClientID  string        `json:"client_id"`
	Key       string        `json:"key"`
	Type      OperationType `json:"type"`
	Version   int64         `json:"version"` // Version серверная версия документа после применения
}
