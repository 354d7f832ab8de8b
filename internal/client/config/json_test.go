package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"local_db_path":   "/data/pets.db",
		"remote_driver":   "postgres",
		"remote_endpoint": "postgres://localhost/petvault",
		"sync_interval":   "10s",
		"session_ttl":     "24h",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "/data/pets.db", cfg.LocalDBPath)
		assert.Equal(t, "postgres", cfg.RemoteDriver)
		assert.Equal(t, "postgres://localhost/petvault", cfg.RemoteEndpoint)
		assert.Equal(t, 10*time.Second, cfg.SyncInterval)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	})

	t.Run("partial JSON keeps earlier values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"remote_driver": "http",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http", cfg.RemoteDriver)
		assert.Equal(t, "petvault.db", cfg.LocalDBPath)
		assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			LocalDBPath:  "defaults.db",
			SyncInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults.db", cfg.LocalDBPath)
		assert.Equal(t, 42*time.Second, cfg.SyncInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
