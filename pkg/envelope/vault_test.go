package envelope_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefthq/weft/pkg/envelope"
	"github.com/wefthq/weft/pkg/store"
	"github.com/wefthq/weft/pkg/store/storetest"
)

func newVault(t *testing.T) (*envelope.Vault, *storetest.Memory) {
	t.Helper()

	masterKey, err := envelope.RandomBytes(envelope.KeySize)
	require.NoError(t, err)
	keyring, err := envelope.NewKeyring(masterKey)
	require.NoError(t, err)

	mem := storetest.New()
	_, err = mem.Insert(context.Background(), "accounts", store.Row{
		"id":             "a1",
		"tenant_id":      "t1",
		"integration_id": "i1",
		"credentials":    "{}",
	})
	require.NoError(t, err)

	return envelope.NewAccountVault(store.NewTenantScope(mem, "t1"), keyring), mem
}

func TestVaultLifecycle(t *testing.T) {
	ctx := context.Background()
	vault, _ := newVault(t)

	state, err := vault.State(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, envelope.StateNoDEK, state)

	// Credential writes require an issued DEK.
	err = vault.SetField(ctx, "a1", "token", "secret-X")
	require.ErrorIs(t, err, envelope.ErrKeyUnwrap)

	require.NoError(t, vault.IssueNewDEK(ctx, "a1"))
	state, err = vault.State(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, envelope.StateDEKIssued, state)

	// Issuing twice would orphan ciphertexts; it is refused.
	require.Error(t, vault.IssueNewDEK(ctx, "a1"))

	require.NoError(t, vault.SetField(ctx, "a1", "token", "secret-X"))
	state, err = vault.State(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, envelope.StateDEKWithValues, state)
}

func TestVaultFieldRoundTrip(t *testing.T) {
	ctx := context.Background()
	vault, mem := newVault(t)

	require.NoError(t, vault.IssueNewDEK(ctx, "a1"))
	require.NoError(t, vault.SetField(ctx, "a1", "token", "secret-X"))

	got, err := vault.GetField(ctx, "a1", "token")
	require.NoError(t, err)
	assert.Equal(t, "secret-X", got)

	// The persisted ciphertext never equals the plaintext.
	row, err := mem.FindOne(ctx, "accounts", []store.Where{store.Eq("id", "a1")})
	require.NoError(t, err)
	stored := row["credentials"].(string)
	assert.NotContains(t, stored, "secret-X")
	b64 := base64.StdEncoding.EncodeToString([]byte("secret-X"))
	assert.NotContains(t, stored, b64)

	_, err = vault.GetField(ctx, "a1", "missing")
	require.ErrorIs(t, err, envelope.ErrFieldNotFound)
}

func TestVaultForeignDEKFails(t *testing.T) {
	ctx := context.Background()
	vault, mem := newVault(t)

	require.NoError(t, vault.IssueNewDEK(ctx, "a1"))
	require.NoError(t, vault.SetField(ctx, "a1", "token", "secret-X"))

	// Replace the wrapped DEK with one issued for another row; reads
	// must fail loudly, never return empty credentials.
	otherKey, err := envelope.RandomBytes(envelope.KeySize)
	require.NoError(t, err)
	otherKeyring, err := envelope.NewKeyring(otherKey)
	require.NoError(t, err)
	foreign, err := otherKeyring.IssueDEK("accounts:a1")
	require.NoError(t, err)

	_, err = mem.Update(ctx, "accounts",
		[]store.Where{store.Eq("id", "a1")},
		store.Row{"dek": foreign})
	require.NoError(t, err)

	_, err = vault.GetField(ctx, "a1", "token")
	require.ErrorIs(t, err, envelope.ErrKeyUnwrap)
}

func TestVaultRotateDEK(t *testing.T) {
	ctx := context.Background()
	vault, mem := newVault(t)

	require.NoError(t, vault.IssueNewDEK(ctx, "a1"))
	require.NoError(t, vault.SetField(ctx, "a1", "token", "secret-X"))
	require.NoError(t, vault.SetField(ctx, "a1", "api_key", "key-Y"))

	before, err := mem.FindOne(ctx, "accounts", []store.Where{store.Eq("id", "a1")})
	require.NoError(t, err)

	require.NoError(t, vault.RotateDEK(ctx, "a1"))

	after, err := mem.FindOne(ctx, "accounts", []store.Where{store.Eq("id", "a1")})
	require.NoError(t, err)

	// Rotation re-wraps the DEK and re-encrypts every field.
	assert.NotEqual(t, before["dek"], after["dek"])
	assert.NotEqual(t, before["credentials"], after["credentials"])

	// Values still read back under the new DEK.
	got, err := vault.GetField(ctx, "a1", "token")
	require.NoError(t, err)
	assert.Equal(t, "secret-X", got)
	got, err = vault.GetField(ctx, "a1", "api_key")
	require.NoError(t, err)
	assert.Equal(t, "key-Y", got)
}

func TestVaultIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	vault, mem := newVault(t)
	require.NoError(t, vault.IssueNewDEK(ctx, "a1"))

	// A vault bound to another tenant cannot even see the row.
	masterKey, err := envelope.RandomBytes(envelope.KeySize)
	require.NoError(t, err)
	keyring, err := envelope.NewKeyring(masterKey)
	require.NoError(t, err)

	foreign := envelope.NewAccountVault(store.NewTenantScope(mem, "t2"), keyring)
	_, err = foreign.GetField(ctx, "a1", "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, envelope.ErrFieldNotFound)
}
