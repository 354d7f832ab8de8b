package config

import (
	"flag"
	"os"
	"time"

	"github.com/dvoronkov/petvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path of the local database file
//	-s string   path of the session token file
//	-r string   remote driver: postgres or http (empty disables sync)
//	-e string   remote endpoint: DSN or base URL, depending on driver
//	-t string   bearer token for the http driver
//	-i int      sync interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-r", "-e", "-t", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.LocalDBPath, "d", cfg.LocalDBPath, "path of the local database file")
	fs.StringVar(&cfg.SessionFilePath, "s", cfg.SessionFilePath, "path of the session token file")
	fs.StringVar(&cfg.RemoteDriver, "r", cfg.RemoteDriver, "remote driver (postgres or http)")
	fs.StringVar(&cfg.RemoteEndpoint, "e", cfg.RemoteEndpoint, "remote endpoint (DSN or base URL)")
	fs.StringVar(&cfg.RemoteAuthToken, "t", cfg.RemoteAuthToken, "bearer token for the http driver")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
