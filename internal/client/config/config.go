package config

import "time"

// Config holds runtime settings for the PetVault CLI.
//
// Fields:
//   - LocalDBPath: path of the local SQLite database file.
//   - SessionFilePath: path of the persisted session token.
//   - RemoteDriver: "postgres" or "http"; empty disables sync entirely.
//   - RemoteEndpoint: DSN (postgres) or base URL (http) of the remote store.
//   - RemoteAuthToken: bearer token for the http driver, optional.
//   - SyncInterval: how often the sync engine attempts a cycle.
//   - ProbeTimeout: how long a single connectivity probe may take.
//   - SessionTTL: how long a login stays valid without re-authentication.
type Config struct {
	LocalDBPath     string
	SessionFilePath string
	RemoteDriver    string
	RemoteEndpoint  string
	RemoteAuthToken string
	SyncInterval    time.Duration
	ProbeTimeout    time.Duration
	SessionTTL      time.Duration
}

// Remote driver names accepted in RemoteDriver.
const (
	DriverPostgres = "postgres"
	DriverHTTP     = "http"
)

// SyncEnabled reports whether a remote store is configured at all.
func (c *Config) SyncEnabled() bool {
	return c.RemoteDriver != "" && c.RemoteEndpoint != ""
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "petvault.db"
	c.SessionFilePath = "petvault-session.jwt"
	c.SyncInterval = 30 * time.Second
	c.ProbeTimeout = 3 * time.Second
	c.SessionTTL = 7 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
