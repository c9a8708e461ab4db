// Package main provides weftctl, the operator CLI for the weft
// tenant-isolated resource store.
//
// # Architecture
//
// The SDK is organized into several packages:
//
//   - pkg/store: Database adapter contract and tenant-scoping wrapper
//   - pkg/orm: Schema-validated service clients over the resource table
//   - pkg/events: Append-only integration event log
//   - pkg/envelope: KEK/DEK envelope encryption for credentials
//   - pkg/schema: Plugin schema definitions and document validation
//   - pkg/plugin: Plugin registry and per-tenant execution context
//   - pkg/model: Row mapping for the persisted tables
//   - pkg/db: Database connection utilities
//   - pkg/config: Configuration management
//
// # Quick Start
//
//	# Generate a master key for credential encryption
//	weftctl data-key generate > master_key
//	export WEFT_MASTER_KEY=$(cat master_key)
//
//	# Run database migrations
//	weftctl db migrate
//
//	# Register an integration and issue its data key
//	weftctl integration create salesforce
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - WEFT_MASTER_KEY: Base64-encoded 256-bit key-encryption key
//   - WEFT_LOG_LEVEL: Log level (debug, info, warn, error)
package main
