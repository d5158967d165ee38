// Package config assembles the client's runtime settings from layered
// sources: profile defaults, then a .env file / process environment, then
// an optional JSON file, then command-line flags. Later sources win.
package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Environment selects a configuration profile.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds runtime settings for the VitalTrack client.
//
// RequestTimeout bounds every outbound API call; the production default
// is deliberately longer than the development one (mobile networks versus
// a local backend). DebugMode gates log verbosity only, never behavior.
type Config struct {
	Environment    Environment
	APIBaseURL     string
	RequestTimeout time.Duration
	DatabasePath   string
	KeyFilePath    string
	DebugMode      bool
}

// LoadDefaults populates c with the profile defaults for env.
func (c *Config) LoadDefaults(env Environment) {
	c.Environment = env
	c.DatabasePath = "vitaltrack.db"
	c.KeyFilePath = "vitaltrack.key"

	switch env {
	case EnvProduction:
		c.APIBaseURL = "https://api.vitaltrack.app"
		c.RequestTimeout = 30 * time.Second
		c.DebugMode = false
	default:
		c.APIBaseURL = "http://localhost:3000"
		c.RequestTimeout = 10 * time.Second
		c.DebugMode = true
	}
}

// LoadConfig constructs a Config: profile defaults, then environment
// variables (a .env file is honored if present), then JSON (if -c/-config
// was given), then flags. Later sources take precedence.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults(environmentFromEnv())
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
