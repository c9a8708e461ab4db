package model

import (
	"encoding/json"
	"time"

	"github.com/wefthq/weft/pkg/store"
)

// Resource is one plugin-managed entity stored as a versioned JSON row.
// The payload is opaque here; shape validation belongs to the
// service-ORM layer.
type Resource struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	Resource   string          `json:"resource"`
	Service    string          `json:"service"`
	ResourceID string          `json:"resource_id"`
	Version    string          `json:"version"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Resource) TableName() string {
	return "resources"
}

// UniqueColumns is the conflict key for upserts.
func (Resource) UniqueColumns() []string {
	return []string{"tenant_id", "resource", "service", "resource_id"}
}

func (r *Resource) Row() store.Row {
	return store.Row{
		"id":          r.ID,
		"tenant_id":   r.TenantID,
		"resource":    r.Resource,
		"service":     r.Service,
		"resource_id": r.ResourceID,
		"version":     r.Version,
		"data":        string(r.Data),
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
}

func ResourceFromRow(row store.Row) *Resource {
	return &Resource{
		ID:         rowString(row, "id"),
		TenantID:   rowString(row, "tenant_id"),
		Resource:   rowString(row, "resource"),
		Service:    rowString(row, "service"),
		ResourceID: rowString(row, "resource_id"),
		Version:    rowString(row, "version"),
		Data:       json.RawMessage(rowBytes(row, "data")),
		CreatedAt:  rowTime(row, "created_at"),
		UpdatedAt:  rowTime(row, "updated_at"),
	}
}
