// Package orm generates typed per-service clients over the resource
// store. Each Client is bound to one plugin namespace, one service
// collection and one entity schema, and reads/writes versioned JSON
// rows through a tenant-scoped adapter.
//
// Filters are expressed over the decoded entity attributes, not the raw
// JSON column. The client translates the supported predicate subset into
// storage-level JSON predicates and rejects everything else with
// ErrUnsupportedFilter, so a translation gap fails fast instead of
// silently matching nothing.
package orm
