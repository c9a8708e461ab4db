package model

import (
	"encoding/json"
	"time"

	"github.com/wefthq/weft/pkg/store"
)

// Account is one tenant/provider pairing. It carries its own wrapped DEK
// so rotating one tenant's credentials never touches another's.
type Account struct {
	ID            string            `json:"id"`
	TenantID      string            `json:"tenant_id"`
	IntegrationID string            `json:"integration_id"`
	Config        json.RawMessage   `json:"config"`
	DEK           []byte            `json:"-"`
	Credentials   map[string]string `json:"-"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (Account) UniqueColumns() []string {
	return []string{"tenant_id", "integration_id"}
}

func (a *Account) Row() (store.Row, error) {
	creds, err := json.Marshal(a.Credentials)
	if err != nil {
		return nil, err
	}
	return store.Row{
		"id":             a.ID,
		"tenant_id":      a.TenantID,
		"integration_id": a.IntegrationID,
		"config":         string(a.Config),
		"dek":            a.DEK,
		"credentials":    string(creds),
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}, nil
}

func AccountFromRow(row store.Row) (*Account, error) {
	out := &Account{
		ID:            rowString(row, "id"),
		TenantID:      rowString(row, "tenant_id"),
		IntegrationID: rowString(row, "integration_id"),
		Config:        json.RawMessage(rowBytes(row, "config")),
		DEK:           rowBytes(row, "dek"),
		Credentials:   map[string]string{},
		CreatedAt:     rowTime(row, "created_at"),
		UpdatedAt:     rowTime(row, "updated_at"),
	}
	if err := rowJSON(row, "credentials", &out.Credentials); err != nil {
		return nil, err
	}
	return out, nil
}
