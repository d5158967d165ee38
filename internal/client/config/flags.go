package config

import (
	"flag"
	"os"
	"time"

	"github.com/vitaltrack/vitaltrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend API
//	-t int      request timeout in milliseconds
//	-f string   path to the client database file
//	-k string   path to the install key file
//	-d          enable debug logging
//
// Args are filtered through flagx.FilterArgs so this FlagSet never trips
// over flags owned by other layers (e.g. -c for the JSON config).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-f", "-k", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	timeoutMs := fs.Int("t", int(cfg.RequestTimeout.Milliseconds()), "request timeout (in milliseconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path to the client database file")
	fs.StringVar(&cfg.KeyFilePath, "k", cfg.KeyFilePath, "path to the install key file")
	fs.BoolVar(&cfg.DebugMode, "d", cfg.DebugMode, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeoutMs) * time.Millisecond
}
