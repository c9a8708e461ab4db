package envelope

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wefthq/weft/pkg/store"
)

// ErrFieldNotFound reports a credential field that was never set.
// Distinct from decryption failures: callers must not treat either as
// an empty credential.
var ErrFieldNotFound = errors.New("credential field not found")

// State is the key lifecycle of an integration or account row.
type State int

const (
	StateNoDEK State = iota
	StateDEKIssued
	StateDEKWithValues
)

func (s State) String() string {
	switch s {
	case StateNoDEK:
		return "no_dek"
	case StateDEKIssued:
		return "dek_issued"
	case StateDEKWithValues:
		return "dek_issued_with_values"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Vault reads and writes encrypted credential fields on one credential
// table (accounts or integrations). Every access unwraps the row's DEK
// afresh; nothing is cached.
type Vault struct {
	db      store.Adapter
	keyring *Keyring
	table   string
}

// NewAccountVault operates on the accounts table. Pass a tenant-scoped
// adapter so account rows stay isolated per tenant.
func NewAccountVault(db store.Adapter, keyring *Keyring) *Vault {
	return &Vault{db: db, keyring: keyring, table: "accounts"}
}

// NewIntegrationVault operates on the platform-owned integrations table.
func NewIntegrationVault(db store.Adapter, keyring *Keyring) *Vault {
	return &Vault{db: db, keyring: keyring, table: "integrations"}
}

// owner binds wrapped DEKs to their row; fieldAAD binds each ciphertext
// to its row and field name, so moved or relabeled ciphertexts fail
// authentication.
func (v *Vault) owner(id string) string {
	return v.table + ":" + id
}

func (v *Vault) fieldAAD(id, name string) []byte {
	return []byte(v.table + ":" + id + ":" + name)
}

type credentialRow struct {
	id     string
	dek    []byte
	fields map[string]string
}

func (v *Vault) load(ctx context.Context, db store.Adapter, id string) (*credentialRow, error) {
	row, err := db.FindOne(ctx, v.table, []store.Where{store.Eq("id", id)})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%s %q not found", v.table, id)
	}

	out := &credentialRow{id: id, fields: map[string]string{}}
	switch dek := row["dek"].(type) {
	case []byte:
		out.dek = dek
	case string:
		out.dek = []byte(dek)
	}

	switch creds := row["credentials"].(type) {
	case []byte:
		if len(creds) > 0 {
			err = json.Unmarshal(creds, &out.fields)
		}
	case string:
		if creds != "" {
			err = json.Unmarshal([]byte(creds), &out.fields)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode credentials for %s %q: %w", v.table, id, err)
	}
	return out, nil
}

func (v *Vault) save(ctx context.Context, db store.Adapter, row *credentialRow) error {
	creds, err := json.Marshal(row.fields)
	if err != nil {
		return err
	}
	_, err = db.Update(ctx, v.table,
		[]store.Where{store.Eq("id", row.id)},
		store.Row{
			"dek":         row.dek,
			"credentials": string(creds),
			"updated_at":  time.Now().UTC(),
		})
	return err
}

// State reports the row's key lifecycle position.
func (v *Vault) State(ctx context.Context, id string) (State, error) {
	row, err := v.load(ctx, v.db, id)
	if err != nil {
		return StateNoDEK, err
	}
	switch {
	case len(row.dek) == 0:
		return StateNoDEK, nil
	case len(row.fields) == 0:
		return StateDEKIssued, nil
	}
	return StateDEKWithValues, nil
}

// IssueNewDEK generates and wraps a fresh DEK for a row that has none.
// Rows that already hold a DEK must rotate instead, so existing field
// ciphertexts are never orphaned.
func (v *Vault) IssueNewDEK(ctx context.Context, id string) error {
	return v.db.Transaction(ctx, func(tx store.Adapter) error {
		row, err := v.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(row.dek) > 0 {
			return fmt.Errorf("%s %q already holds a DEK; use RotateDEK", v.table, id)
		}

		row.dek, err = v.keyring.IssueDEK(v.owner(id))
		if err != nil {
			return err
		}
		return v.save(ctx, tx, row)
	})
}

// SetField encrypts plaintextValue under the row's DEK and stores the
// ciphertext. The unwrapped DEK lives only for the duration of the call.
func (v *Vault) SetField(ctx context.Context, id, name, plaintextValue string) error {
	return v.db.Transaction(ctx, func(tx store.Adapter) error {
		row, err := v.load(ctx, tx, id)
		if err != nil {
			return err
		}

		dek, err := v.keyring.Unwrap(row.dek, v.owner(id))
		if err != nil {
			return err
		}

		packed, err := dek.Encrypt(v.fieldAAD(id, name), []byte(plaintextValue))
		if err != nil {
			return err
		}

		row.fields[name] = base64.StdEncoding.EncodeToString(packed)
		return v.save(ctx, tx, row)
	})
}

// GetField decrypts and returns a credential value. For internal use
// when constructing provider API clients only; the plaintext must never
// reach logs, events or plugin-visible context objects.
func (v *Vault) GetField(ctx context.Context, id, name string) (string, error) {
	row, err := v.load(ctx, v.db, id)
	if err != nil {
		return "", err
	}

	encoded, ok := row.fields[name]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s %q", ErrFieldNotFound, name, v.table, id)
	}

	dek, err := v.keyring.Unwrap(row.dek, v.owner(id))
	if err != nil {
		return "", err
	}

	packed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: field %s is not valid base64", ErrDecryption, name)
	}

	plain, err := dek.Decrypt(v.fieldAAD(id, name), packed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// RotateDEK issues a new DEK and eagerly re-encrypts every stored field
// under it, atomically. A failure anywhere rolls the rotation back
// wholesale, leaving the old DEK fully valid; no wrapped-DEK history is
// retained.
func (v *Vault) RotateDEK(ctx context.Context, id string) error {
	return v.db.Transaction(ctx, func(tx store.Adapter) error {
		row, err := v.load(ctx, tx, id)
		if err != nil {
			return err
		}

		oldDEK, err := v.keyring.Unwrap(row.dek, v.owner(id))
		if err != nil {
			return err
		}

		wrapped, err := v.keyring.IssueDEK(v.owner(id))
		if err != nil {
			return err
		}
		newDEK, err := v.keyring.Unwrap(wrapped, v.owner(id))
		if err != nil {
			return err
		}

		for name, encoded := range row.fields {
			packed, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return fmt.Errorf("%w: field %s is not valid base64", ErrDecryption, name)
			}
			plain, err := oldDEK.Decrypt(v.fieldAAD(id, name), packed)
			if err != nil {
				return fmt.Errorf("rotate %s %q: field %s: %w", v.table, id, name, err)
			}
			repacked, err := newDEK.Encrypt(v.fieldAAD(id, name), plain)
			if err != nil {
				return err
			}
			row.fields[name] = base64.StdEncoding.EncodeToString(repacked)
		}

		row.dek = wrapped
		return v.save(ctx, tx, row)
	})
}
