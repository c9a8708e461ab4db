package orm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wefthq/weft/pkg/model"
	"github.com/wefthq/weft/pkg/schema"
	"github.com/wefthq/weft/pkg/store"
)

// ErrUnsupportedFilter reports a filter predicate the client cannot
// translate into a storage-level predicate.
var ErrUnsupportedFilter = errors.New("unsupported filter predicate")

// Record is one decoded resource row.
type Record struct {
	ResourceID string
	Version    string
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Client is the typed store surface for one plugin service. It must be
// constructed over a tenant-scoped adapter; it never handles tenant ids
// itself.
type Client struct {
	db       store.Adapter
	resource string
	service  string
	entity   schema.Entity

	// maxListLimit clamps FindMany page sizes. Zero means unbounded.
	maxListLimit int
}

// NewClient binds a client to a (resource, service) collection and its
// entity schema.
func NewClient(db store.Adapter, resource, service string, entity schema.Entity) *Client {
	return &Client{db: db, resource: resource, service: service, entity: entity}
}

// WithListLimit returns a copy of the client whose FindMany pages are
// capped at n rows, including requests that ask for no bound at all.
func (c *Client) WithListLimit(n int) *Client {
	clone := *c
	clone.maxListLimit = n
	return &clone
}

func (c *Client) keyWhere(resourceID string) []store.Where {
	return []store.Where{
		store.Eq("resource", c.resource),
		store.Eq("service", c.service),
		store.Eq("resource_id", resourceID),
	}
}

// UpsertByResourceID validates data against the entity schema, stamps
// the schema's current version and writes the row, inserting or updating
// on the (tenant, resource, service, resource_id) key. created_at
// survives updates; updated_at is refreshed. Conflicts resolve in the
// database, so concurrent upserts of the same key are safe.
func (c *Client) UpsertByResourceID(ctx context.Context, resourceID string, data map[string]any) (*Record, error) {
	if err := c.entity.Validate(data); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res := &model.Resource{
		ID:         uuid.NewString(),
		Resource:   c.resource,
		Service:    c.service,
		ResourceID: resourceID,
		Version:    c.entity.Version,
		Data:       raw,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	row := res.Row()
	// The scope wrapper owns the tenant column.
	delete(row, "tenant_id")

	if _, err := c.db.Upsert(ctx, res.TableName(), res.UniqueColumns(), row); err != nil {
		return nil, err
	}

	// Refetch so the caller sees the stored metadata (created_at is the
	// original one when the upsert hit an existing row).
	return c.FindByResourceID(ctx, resourceID)
}

// FindByResourceID returns the decoded record, or nil if absent. The
// payload is re-validated on read as a contract check; a row that no
// longer matches its schema surfaces ErrSchemaValidation rather than
// leaking through.
func (c *Client) FindByResourceID(ctx context.Context, resourceID string) (*Record, error) {
	row, err := c.db.FindOne(ctx, model.Resource{}.TableName(), c.keyWhere(resourceID))
	if err != nil || row == nil {
		return nil, err
	}
	return c.decode(row)
}

// FindMany returns the records matching the filter, newest first.
func (c *Client) FindMany(ctx context.Context, filter []Filter, page store.Page) ([]*Record, error) {
	where, err := c.translate(filter)
	if err != nil {
		return nil, err
	}

	if c.maxListLimit > 0 && (page.Limit == 0 || page.Limit > c.maxListLimit) {
		page.Limit = c.maxListLimit
	}

	rows, err := c.db.FindMany(ctx, model.Resource{}.TableName(), where,
		[]store.Sort{{Field: "updated_at", Desc: true}}, page)
	if err != nil {
		return nil, err
	}

	out := make([]*Record, 0, len(rows))
	for _, row := range rows {
		rec, err := c.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of records matching the filter.
func (c *Client) Count(ctx context.Context, filter []Filter) (int64, error) {
	where, err := c.translate(filter)
	if err != nil {
		return 0, err
	}
	return c.db.Count(ctx, model.Resource{}.TableName(), where)
}

// DeleteByResourceID removes the record, reporting whether a row
// existed.
func (c *Client) DeleteByResourceID(ctx context.Context, resourceID string) (bool, error) {
	n, err := c.db.DeleteMany(ctx, model.Resource{}.TableName(), c.keyWhere(resourceID))
	return n > 0, err
}

func (c *Client) decode(row store.Row) (*Record, error) {
	res := model.ResourceFromRow(row)

	data := map[string]any{}
	if len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: stored payload for %s/%s id=%q is not valid JSON: %v",
				schema.ErrSchemaValidation, c.resource, c.service, res.ResourceID, err)
		}
	}
	if err := c.entity.Validate(data); err != nil {
		return nil, err
	}

	return &Record{
		ResourceID: res.ResourceID,
		Version:    res.Version,
		Data:       data,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}, nil
}
