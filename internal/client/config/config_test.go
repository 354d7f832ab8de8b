package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "petvault.db", c.LocalDBPath)
	assert.Equal(t, "petvault-session.jwt", c.SessionFilePath)
	assert.Equal(t, 30*time.Second, c.SyncInterval)
	assert.Equal(t, 3*time.Second, c.ProbeTimeout)
	assert.Equal(t, 7*24*time.Hour, c.SessionTTL)
	assert.False(t, c.SyncEnabled())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "petvault.db", cfg.LocalDBPath)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}

func TestSyncEnabled(t *testing.T) {
	c := Config{RemoteDriver: DriverHTTP}
	assert.False(t, c.SyncEnabled())

	c.RemoteEndpoint = "https://vault.example.com"
	assert.True(t, c.SyncEnabled())
}
