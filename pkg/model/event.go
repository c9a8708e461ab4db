package model

import (
	"encoding/json"
	"time"

	"github.com/wefthq/weft/pkg/store"
)

// Event is one append-only record of a plugin operation. Rows are never
// updated or deleted in normal operation.
type Event struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) Row() store.Row {
	return store.Row{
		"id":         e.ID,
		"tenant_id":  e.TenantID,
		"event_type": e.EventType,
		"payload":    string(e.Payload),
		"status":     e.Status,
		"created_at": e.CreatedAt,
	}
}

func EventFromRow(row store.Row) *Event {
	return &Event{
		ID:        rowString(row, "id"),
		TenantID:  rowString(row, "tenant_id"),
		EventType: rowString(row, "event_type"),
		Payload:   json.RawMessage(rowBytes(row, "payload")),
		Status:    rowString(row, "status"),
		CreatedAt: rowTime(row, "created_at"),
	}
}
