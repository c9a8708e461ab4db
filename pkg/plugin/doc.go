// Package plugin wires declared plugins into per-tenant capability
// bundles.
//
// Plugins are registered once at startup via an explicit loop over their
// definitions; the registry is a plain map, built eagerly, with no
// reflection or dynamic property assignment. Binding a registered plugin
// to a tenant produces a Context: the tenant-scoped database, one
// service-ORM client per declared service, the event log and a
// credential accessor. Plugin operation code receives only the Context
// and therefore cannot reach another tenant's rows or raw adapters.
package plugin
