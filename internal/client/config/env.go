package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names.
const (
	envProfile      = "VITALTRACK_ENV"
	envAPIBaseURL   = "API_BASE_URL"
	envTimeout      = "REQUEST_TIMEOUT"
	envDebugMode    = "DEBUG_MODE"
	envDatabasePath = "DATABASE_PATH"
	envKeyFilePath  = "KEY_FILE_PATH"
)

func environmentFromEnv() Environment {
	if os.Getenv(envProfile) == string(EnvProduction) {
		return EnvProduction
	}
	return EnvDevelopment
}

// parseEnv overlays Config with values from the process environment.
// REQUEST_TIMEOUT is interpreted as milliseconds.
func parseEnv(cfg *Config) {
	if v := os.Getenv(envAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			cfg.RequestTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv(envDebugMode); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DebugMode = b
		}
	}
	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envKeyFilePath); v != "" {
		cfg.KeyFilePath = v
	}
}
