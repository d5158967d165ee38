package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T) {
	t.Helper()
	orig := os.Args
	os.Args = []string{"vitaltrack"}
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults_DevelopmentProfile(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults(EnvDevelopment)

	require.Equal(t, EnvDevelopment, cfg.Environment)
	require.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.DebugMode)
}

func TestLoadDefaults_ProductionProfile(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults(EnvProduction)

	require.Equal(t, "https://api.vitaltrack.app", cfg.APIBaseURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.DebugMode)
}

func TestLoadDefaults_ProductionTimeoutExceedsDevelopment(t *testing.T) {
	var dev, prod Config
	dev.LoadDefaults(EnvDevelopment)
	prod.LoadDefaults(EnvProduction)
	require.Greater(t, prod.RequestTimeout, dev.RequestTimeout)
}

func TestLoadConfig_EnvSelectsProfile(t *testing.T) {
	resetArgs(t)
	t.Setenv("VITALTRACK_ENV", "production")

	cfg := LoadConfig()
	require.Equal(t, EnvProduction, cfg.Environment)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_EnvVarsOverrideDefaults(t *testing.T) {
	resetArgs(t)
	t.Setenv("API_BASE_URL", "https://staging.vitaltrack.app")
	t.Setenv("REQUEST_TIMEOUT", "2500")
	t.Setenv("DEBUG_MODE", "false")
	t.Setenv("DATABASE_PATH", "/tmp/vt.db")

	cfg := LoadConfig()
	require.Equal(t, "https://staging.vitaltrack.app", cfg.APIBaseURL)
	require.Equal(t, 2500*time.Millisecond, cfg.RequestTimeout)
	require.False(t, cfg.DebugMode)
	require.Equal(t, "/tmp/vt.db", cfg.DatabasePath)
}

func TestLoadConfig_InvalidEnvValuesIgnored(t *testing.T) {
	resetArgs(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("DEBUG_MODE", "maybe")

	cfg := LoadConfig()
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.DebugMode)
}
