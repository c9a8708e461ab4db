// Package model defines the rows persisted by the platform core.
//
// # Core Models
//
//   - Resource: one versioned JSON entity owned by a plugin service
//   - Event: one append-only record of a plugin operation
//   - Integration: a provider configuration with its wrapped DEK
//   - Account: a tenant/provider pairing with its own wrapped DEK and
//     encrypted credential fields
//
// The generic adapter moves rows as maps; these types give the layers
// above a stable decode/encode boundary (FromRow / Row methods) without
// the storage layer ever inspecting payload contents.
//
// # Database Schema
//
// PostgreSQL, managed by the migrations under db/migrations:
//
//   - resources: unique on (tenant_id, resource, service, resource_id)
//   - events: append-only, indexed on (tenant_id, event_type)
//   - integrations: platform-owned, shared across tenants
//   - accounts: unique on (tenant_id, integration_id)
package model
