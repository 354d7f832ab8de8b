package config

import (
	"flag"
	"os"

	"github.com/dvoronkov/petvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address of the HTTP endpoint
//	-d string   PostgreSQL DSN
//	-t string   static bearer token (empty disables auth)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to bind the server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.AuthToken, "t", cfg.AuthToken, "static bearer token")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
