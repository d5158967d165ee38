package config

import (
	"encoding/json"
	"os"

	"github.com/vitaltrack/vitaltrack/internal/flagx"
	"github.com/vitaltrack/vitaltrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept either strings like "30s" or integer milliseconds (timex).
// Pointer fields distinguish "absent" from zero values so the JSON layer
// only overrides keys it actually contains.
type JsonConfig struct {
	APIBaseURL     string          `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DatabasePath   string          `json:"database_path"`
	KeyFilePath    string          `json:"key_file_path"`
	DebugMode      *bool           `json:"debug_mode"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c/-config flag. No flag means no JSON layer. Read or unmarshal errors
// panic; a config file that exists but cannot be used is a startup bug.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.KeyFilePath != "" {
		cfg.KeyFilePath = jc.KeyFilePath
	}
	if jc.DebugMode != nil {
		cfg.DebugMode = *jc.DebugMode
	}
}
