package model

import (
	"encoding/json"
	"time"

	"github.com/wefthq/weft/pkg/store"
)

// Integration is one provider configuration, shared across tenants. DEK
// holds the integration's data-encryption key wrapped under the operator
// KEK; it is never stored in plaintext. Credentials maps field names to
// packed ciphertexts encrypted under the unwrapped DEK.
type Integration struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Config      json.RawMessage   `json:"config"`
	DEK         []byte            `json:"-"`
	Credentials map[string]string `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Integration) TableName() string {
	return "integrations"
}

func (i *Integration) Row() (store.Row, error) {
	creds, err := json.Marshal(i.Credentials)
	if err != nil {
		return nil, err
	}
	return store.Row{
		"id":          i.ID,
		"name":        i.Name,
		"config":      string(i.Config),
		"dek":         i.DEK,
		"credentials": string(creds),
		"created_at":  i.CreatedAt,
		"updated_at":  i.UpdatedAt,
	}, nil
}

func IntegrationFromRow(row store.Row) (*Integration, error) {
	out := &Integration{
		ID:          rowString(row, "id"),
		Name:        rowString(row, "name"),
		Config:      json.RawMessage(rowBytes(row, "config")),
		DEK:         rowBytes(row, "dek"),
		Credentials: map[string]string{},
		CreatedAt:   rowTime(row, "created_at"),
		UpdatedAt:   rowTime(row, "updated_at"),
	}
	if err := rowJSON(row, "credentials", &out.Credentials); err != nil {
		return nil, err
	}
	return out, nil
}
