package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-d", "/tmp/pets.db", "-r", "http", "-e", "https://vault.example.com", "-t", "tok", "-i", "10"},
			expectPanic: false,
			expected: &Config{
				LocalDBPath:     "/tmp/pets.db",
				RemoteDriver:    "http",
				RemoteEndpoint:  "https://vault.example.com",
				RemoteAuthToken: "tok",
				SyncInterval:    10 * time.Second,
			}},
		{name: "Test2 incorrect sync interval",
			args:        []string{"cmd", "-i", "abc"},
			expectPanic: true,
			expected:    &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
