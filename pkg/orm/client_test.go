package orm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefthq/weft/pkg/orm"
	"github.com/wefthq/weft/pkg/schema"
	"github.com/wefthq/weft/pkg/store"
	"github.com/wefthq/weft/pkg/store/storetest"
)

func messagesEntity() schema.Entity {
	return schema.Entity{
		Version: "2024-06-01",
		Fields: map[string]schema.Field{
			"text":      {Kind: schema.KindText, Required: true},
			"pinned":    {Kind: schema.KindBoolean},
			"reactions": {Kind: schema.KindInteger},
			"metadata":  {Kind: schema.KindObject},
		},
	}
}

func newClient(tenant string, mem *storetest.Memory) *orm.Client {
	return orm.NewClient(store.NewTenantScope(mem, tenant), "slack", "messages", messagesEntity())
}

func TestUpsertRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newClient("t1", storetest.New())

	in := map[string]any{
		"text":      "hi",
		"pinned":    true,
		"reactions": float64(2),
		"metadata":  map[string]any{"source": "api"},
	}
	rec, err := client.UpsertByResourceID(ctx, "ts-1", in)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2024-06-01", rec.Version)

	got, err := client.FindByResourceID(ctx, "ts-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, got.Data)
}

func TestUpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	client := newClient("t1", mem)

	first, err := client.UpsertByResourceID(ctx, "ts-1", map[string]any{"text": "hi"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	second, err := client.UpsertByResourceID(ctx, "ts-1", map[string]any{"text": "edited"})
	require.NoError(t, err)

	// Exactly one row, original created_at, advanced updated_at.
	n, err := mem.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "created_at must survive updates")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at must advance")
	assert.Equal(t, "edited", second.Data["text"])
}

func TestUpsertValidatesBeforeWrite(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	client := newClient("t1", mem)

	_, err := client.UpsertByResourceID(ctx, "ts-1", map[string]any{"pinned": true})
	require.ErrorIs(t, err, schema.ErrSchemaValidation)

	n, err := mem.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.Zero(t, n, "invalid payloads must not reach storage")
}

func TestFindByResourceIDAbsentIsNil(t *testing.T) {
	client := newClient("t1", storetest.New())

	rec, err := client.FindByResourceID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFindManyFilters(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()
	client := newClient("t1", mem)

	for i, text := range []string{"alpha", "beta", "gamma"} {
		_, err := client.UpsertByResourceID(ctx, "ts-"+text, map[string]any{
			"text":      text,
			"pinned":    i == 0,
			"reactions": float64(i),
		})
		require.NoError(t, err)
	}

	recs, err := client.FindMany(ctx, []orm.Filter{orm.Eq("pinned", true)}, store.Page{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "alpha", recs[0].Data["text"])

	recs, err = client.FindMany(ctx, []orm.Filter{
		{Field: "reactions", Op: store.OpGte, Value: float64(1)},
	}, store.Page{})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	n, err := client.Count(ctx, []orm.Filter{orm.Eq("text", "beta")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFindManyRejectsUnsupportedPredicates(t *testing.T) {
	ctx := context.Background()
	client := newClient("t1", storetest.New())

	// Undeclared field.
	_, err := client.FindMany(ctx, []orm.Filter{orm.Eq("color", "red")}, store.Page{})
	require.ErrorIs(t, err, orm.ErrUnsupportedFilter)

	// Operator outside the kind's subset.
	_, err = client.FindMany(ctx, []orm.Filter{
		{Field: "text", Op: store.OpGt, Value: "a"},
	}, store.Page{})
	require.ErrorIs(t, err, orm.ErrUnsupportedFilter)

	// Object fields are not filterable at all.
	_, err = client.Count(ctx, []orm.Filter{orm.Eq("metadata", map[string]any{})})
	require.ErrorIs(t, err, orm.ErrUnsupportedFilter)
}

func TestDeleteByResourceID(t *testing.T) {
	ctx := context.Background()
	client := newClient("t1", storetest.New())

	_, err := client.UpsertByResourceID(ctx, "ts-1", map[string]any{"text": "hi"})
	require.NoError(t, err)

	removed, err := client.DeleteByResourceID(ctx, "ts-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = client.DeleteByResourceID(ctx, "ts-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClientsAreTenantIsolated(t *testing.T) {
	ctx := context.Background()
	mem := storetest.New()

	_, err := newClient("t1", mem).UpsertByResourceID(ctx, "ts-1", map[string]any{"text": "hi"})
	require.NoError(t, err)

	t2 := newClient("t2", mem)
	rec, err := t2.FindByResourceID(ctx, "ts-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	n, err := t2.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Same key under another tenant is a distinct row.
	_, err = t2.UpsertByResourceID(ctx, "ts-1", map[string]any{"text": "other"})
	require.NoError(t, err)

	total, err := mem.Count(ctx, "resources", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestFindManyListLimit(t *testing.T) {
	ctx := context.Background()
	client := newClient("t1", storetest.New()).WithListLimit(2)

	for _, id := range []string{"ts-1", "ts-2", "ts-3"} {
		_, err := client.UpsertByResourceID(ctx, id, map[string]any{"text": "hi"})
		require.NoError(t, err)
	}

	records, err := client.FindMany(ctx, nil, store.Page{})
	require.NoError(t, err)
	assert.Len(t, records, 2, "unbounded requests are clamped")

	records, err = client.FindMany(ctx, nil, store.Page{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, records, 2, "oversized requests are clamped")

	records, err = client.FindMany(ctx, nil, store.Page{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
