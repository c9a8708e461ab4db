package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefthq/weft/pkg/store"
	"github.com/wefthq/weft/pkg/store/storetest"
)

func seedResource(t *testing.T, mem *storetest.Memory, tenant, resourceID string) store.Row {
	t.Helper()
	row, err := mem.Insert(context.Background(), "resources", store.Row{
		"id":          tenant + "/" + resourceID,
		"tenant_id":   tenant,
		"resource":    "slack",
		"service":     "messages",
		"resource_id": resourceID,
		"data":        `{"text":"hi"}`,
	})
	require.NoError(t, err)
	return row
}

func TestTenantScopeReadIsolation(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	seedResource(t, mem, "t1", "ts-1")

	t1 := store.NewTenantScope(mem, "t1")
	t2 := store.NewTenantScope(mem, "t2")

	// The owning tenant sees the row.
	row, err := t1.FindOne(ctx, "resources", []store.Where{store.Eq("resource_id", "ts-1")})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "t1", row["tenant_id"])

	// A foreign tenant sees nothing, even with the row's exact id.
	row, err = t2.FindOne(ctx, "resources", []store.Where{store.Eq("id", "t1/ts-1")})
	require.NoError(t, err)
	assert.Nil(t, row)

	rows, err := t2.FindMany(ctx, "resources", nil, nil, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	n, err := t2.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTenantScopeWriteIsolation(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	seedResource(t, mem, "t1", "ts-1")

	t2 := store.NewTenantScope(mem, "t2")

	// Updates and deletes against a foreign row affect zero rows.
	row, err := t2.Update(ctx, "resources",
		[]store.Where{store.Eq("id", "t1/ts-1")},
		store.Row{"data": `{"text":"stolen"}`})
	require.NoError(t, err)
	assert.Nil(t, row)

	removed, err := t2.DeleteMany(ctx, "resources", []store.Where{store.Eq("id", "t1/ts-1")})
	require.NoError(t, err)
	assert.Zero(t, removed)

	// The row is untouched.
	t1 := store.NewTenantScope(mem, "t1")
	row, err = t1.FindOne(ctx, "resources", []store.Where{store.Eq("resource_id", "ts-1")})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, `{"text":"hi"}`, row["data"])
}

func TestTenantScopeInsertRejectsForeignTenant(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	t1 := store.NewTenantScope(mem, "t1")

	_, err := t1.Insert(ctx, "resources", store.Row{
		"id":        "x",
		"tenant_id": "t2",
	})
	require.ErrorIs(t, err, store.ErrTenantMismatch)

	// Nothing was written.
	n, err := mem.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTenantScopeInsertInjectsTenant(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	t1 := store.NewTenantScope(mem, "t1")

	row, err := t1.Insert(ctx, "resources", store.Row{"id": "r1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", row["tenant_id"])
}

func TestTenantScopeUnscopedTablePassesThrough(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	t1 := store.NewTenantScope(mem, "t1")

	// integrations is platform-owned; no tenant column is injected.
	row, err := t1.Insert(ctx, "integrations", store.Row{"id": "i1", "name": "slack"})
	require.NoError(t, err)
	_, scoped := row["tenant_id"]
	assert.False(t, scoped)
}

// The concrete scenario from the store contract: one resource under t1,
// visible and deletable only through a t1-bound wrapper.
func TestTenantScopeScenario(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	t1 := store.NewTenantScope(mem, "t1")
	t2 := store.NewTenantScope(mem, "t2")

	_, err := t1.Insert(ctx, "resources", store.Row{
		"id":          "row-1",
		"resource":    "slack",
		"service":     "messages",
		"resource_id": "ts-1",
		"data":        `{"text":"hi"}`,
	})
	require.NoError(t, err)

	n, err := t1.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = t2.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	removed, err := t1.DeleteMany(ctx, "resources", []store.Where{store.Eq("resource_id", "ts-1")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	row, err := t1.FindOne(ctx, "resources", []store.Where{store.Eq("resource_id", "ts-1")})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestTenantScopeTransactionStaysScoped(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	seedResource(t, mem, "t1", "ts-1")

	t2 := store.NewTenantScope(mem, "t2")
	err := t2.Transaction(ctx, func(tx store.Adapter) error {
		rows, err := tx.FindMany(ctx, "resources", nil, nil, store.Page{})
		if err != nil {
			return err
		}
		assert.Empty(t, rows)

		_, err = tx.Insert(ctx, "resources", store.Row{"id": "r2", "tenant_id": "t1"})
		assert.ErrorIs(t, err, store.ErrTenantMismatch)
		return nil
	})
	require.NoError(t, err)
}
