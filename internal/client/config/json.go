package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dvoronkov/petvault/internal/flagx"
	"github.com/dvoronkov/petvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	LocalDBPath     string         `json:"local_db_path"`
	SessionFilePath string         `json:"session_file_path"`
	RemoteDriver    string         `json:"remote_driver"`
	RemoteEndpoint  string         `json:"remote_endpoint"`
	RemoteAuthToken string         `json:"remote_auth_token"`
	SyncInterval    timex.Duration `json:"sync_interval"`
	ProbeTimeout    timex.Duration `json:"probe_timeout"`
	SessionTTL      timex.Duration `json:"session_ttl"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config; zero values are
//     skipped so the JSON file can stay partial.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.SessionFilePath != "" {
		cfg.SessionFilePath = jc.SessionFilePath
	}
	if jc.RemoteDriver != "" {
		cfg.RemoteDriver = jc.RemoteDriver
	}
	if jc.RemoteEndpoint != "" {
		cfg.RemoteEndpoint = jc.RemoteEndpoint
	}
	if jc.RemoteAuthToken != "" {
		cfg.RemoteAuthToken = jc.RemoteAuthToken
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.ProbeTimeout.Duration != 0 {
		cfg.ProbeTimeout = time.Duration(jc.ProbeTimeout.Duration)
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = time.Duration(jc.SessionTTL.Duration)
	}
}
