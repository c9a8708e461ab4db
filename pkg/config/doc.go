// Package config loads platform configuration from /etc/weft/weft.yml
// with environment overrides, and can watch the file for changes.
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - WEFT_LOG_LEVEL: debug, info, warn or error
//
// The master key (WEFT_MASTER_KEY) is decoded by the CLI entry points
// and passed as an explicit parameter; it never appears here.
package config
