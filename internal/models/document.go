package models

import (
	"encoding/json"
	"time"
)

// Document представляет локальную копию сущности, синхронизируемой с сервером.
// Version монотонно растет: любая запись, не увеличивающая версию, отклоняется.
type Document struct {
	LastSyncedAt time.Time       `json:"last_synced_at"` // LastSyncedAt время последнего применения серверного патча
	UpdatedAt    time.Time       `json:"updated_at"`     // UpdatedAt время последней локальной или удаленной записи
	Key          string          `json:"key"`            // Key уникальный ключ документа
	Type         string          `json:"type"`           // Type тип сущности (произвольная строка приложения)
	Value        json.RawMessage `json:"value,omitempty"`
	Version      int64           `json:"version"` // Version начинается с 1
	Dirty        bool            `json:"dirty"`   // Dirty есть локальные изменения, не подтвержденные сервером
	Deleted      bool            `json:"deleted"` // Deleted tombstone, сохраняет версию после удаления
}

// DefaultDocumentType is used when a local write does not name an entity type.
const DefaultDocumentType = "document"

// Clone создает глубокую копию документа
func (d *Document) Clone() *Document {
	var value json.RawMessage
	if d.Value != nil {
		value = make(json.RawMessage, len(d.Value))
		copy(value, d.Value)
	}

	return &Document{
		LastSyncedAt: d.LastSyncedAt,
		UpdatedAt:    d.UpdatedAt,
		Key:          d.Key,
		Type:         d.Type,
		Value:        value,
		Version:      d.Version,
		Dirty:        d.Dirty,
		Deleted:      d.Deleted,
	}
}
