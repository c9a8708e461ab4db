// Package store defines the generic persistence adapter that everything
// above the database line is written against, plus the tenant-scoping
// wrapper that enforces row-level isolation.
//
// The Adapter interface is a minimal CRUD contract (find-one, find-many,
// insert, update, upsert, delete-many, count, transaction) implemented
// once per physical database. GormAdapter is the PostgreSQL
// implementation. Rows travel as generic maps; typed access lives in the
// service-ORM layer above.
//
// # Tenant isolation
//
// TenantScope decorates an Adapter and binds it to a single tenant id for
// its lifetime. On tenant-scoped tables it appends the tenant filter to
// every read, update, delete and count, injects the tenant id on insert,
// and rejects writes that carry a different tenant id with
// ErrTenantMismatch. Components that hold only a TenantScope cannot leak
// another tenant's rows, by construction:
//
//	scoped := store.NewTenantScope(adapter, "t1")
//	rows, err := scoped.FindMany(ctx, "resources", nil, nil, store.Page{})
//	// rows only ever belong to tenant "t1"
//
// Cross-tenant access requires constructing a new wrapper; no operation
// accepts a tenant override.
package store
