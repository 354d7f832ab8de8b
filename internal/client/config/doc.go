// Package config loads runtime configuration for the PetVault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path of the local database file
//	-s string   path of the session token file
//	-r string   remote driver: postgres or http (empty disables sync)
//	-e string   remote endpoint: DSN or base URL, depending on driver
//	-t string   bearer token for the http driver
//	-i int      sync interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "local_db_path": "petvault.db",
//	  "remote_driver": "http",
//	  "remote_endpoint": "https://vault.example.com",
//	  "sync_interval": "30s",
//	  "probe_timeout": "3s",
//	  "session_ttl": "168h"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings of the CLI
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
