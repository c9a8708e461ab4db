package store

import (
	"context"
	"fmt"
)

// TenantColumn is the column that partitions multi-tenant tables.
const TenantColumn = "tenant_id"

// TenantTables returns the default set of tenant-scoped tables. The
// integrations table is deliberately absent: integration definitions are
// platform-owned and shared across tenants.
func TenantTables() []string {
	return []string{"resources", "events", "accounts"}
}

// TenantScope decorates an Adapter with a fixed tenant id. Every
// operation against a tenant-scoped table is silently filtered to that
// tenant; writes carrying a different tenant id fail with
// ErrTenantMismatch. Operations against unscoped tables pass through
// untouched.
//
// The bound id is immutable for the wrapper's lifetime and the wrapper
// holds no other state, so instances are safe to share or reconstruct
// freely.
type TenantScope struct {
	base     Adapter
	tenantID string
	tables   map[string]bool
}

// NewTenantScope binds base to tenantID. With no explicit tables the
// default TenantTables set is scoped.
func NewTenantScope(base Adapter, tenantID string, tables ...string) *TenantScope {
	if len(tables) == 0 {
		tables = TenantTables()
	}
	scoped := make(map[string]bool, len(tables))
	for _, t := range tables {
		scoped[t] = true
	}
	return &TenantScope{base: base, tenantID: tenantID, tables: scoped}
}

// TenantID returns the bound tenant id.
func (s *TenantScope) TenantID() string {
	return s.tenantID
}

func (s *TenantScope) scoped(table string) bool {
	return s.tables[table]
}

func (s *TenantScope) scopeWhere(table string, where []Where) []Where {
	if !s.scoped(table) {
		return where
	}
	out := make([]Where, 0, len(where)+1)
	out = append(out, where...)
	return append(out, Eq(TenantColumn, s.tenantID))
}

// scopeData validates and injects the tenant id on write payloads. Data
// naming a foreign tenant is rejected, never silently rewritten.
func (s *TenantScope) scopeData(table string, data Row) (Row, error) {
	if !s.scoped(table) {
		return data, nil
	}
	if v, ok := data[TenantColumn]; ok && v != s.tenantID {
		return nil, fmt.Errorf("%w: table %s is bound to tenant %q, data names %v",
			ErrTenantMismatch, table, s.tenantID, v)
	}
	out := cloneRow(data)
	out[TenantColumn] = s.tenantID
	return out, nil
}

func (s *TenantScope) FindOne(ctx context.Context, table string, where []Where) (Row, error) {
	return s.base.FindOne(ctx, table, s.scopeWhere(table, where))
}

func (s *TenantScope) FindMany(ctx context.Context, table string, where []Where, sort []Sort, page Page) ([]Row, error) {
	return s.base.FindMany(ctx, table, s.scopeWhere(table, where), sort, page)
}

func (s *TenantScope) Insert(ctx context.Context, table string, data Row) (Row, error) {
	scoped, err := s.scopeData(table, data)
	if err != nil {
		return nil, err
	}
	return s.base.Insert(ctx, table, scoped)
}

func (s *TenantScope) Update(ctx context.Context, table string, where []Where, data Row) (Row, error) {
	scoped, err := s.scopeData(table, data)
	if err != nil {
		return nil, err
	}
	return s.base.Update(ctx, table, s.scopeWhere(table, where), scoped)
}

func (s *TenantScope) Upsert(ctx context.Context, table string, conflictColumns []string, data Row) (Row, error) {
	scoped, err := s.scopeData(table, data)
	if err != nil {
		return nil, err
	}
	return s.base.Upsert(ctx, table, conflictColumns, scoped)
}

func (s *TenantScope) DeleteMany(ctx context.Context, table string, where []Where) (int64, error) {
	return s.base.DeleteMany(ctx, table, s.scopeWhere(table, where))
}

func (s *TenantScope) Count(ctx context.Context, table string, where []Where) (int64, error) {
	return s.base.Count(ctx, table, s.scopeWhere(table, where))
}

// Transaction delegates to the base adapter; the transactional handle
// handed to fn is scoped the same way as the wrapper itself.
func (s *TenantScope) Transaction(ctx context.Context, fn func(tx Adapter) error) error {
	return s.base.Transaction(ctx, func(tx Adapter) error {
		return fn(&TenantScope{base: tx, tenantID: s.tenantID, tables: s.tables})
	})
}
