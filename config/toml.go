package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// TOMLFileName is the optional hand-edited overlay next to config.json.
const TOMLFileName = "config.toml"

// TOMLConfig is the on-disk shape of config.toml. It groups the fields
// people actually edit by hand; everything else lives in config.json.
type TOMLConfig struct {
	Backend   TOMLBackend  `toml:"backend"`
	Timeline  TOMLTimeline `toml:"timeline"`
	Telemetry *bool        `toml:"telemetry_enabled"`
}

// TOMLBackend configures the remote ledger daemon connection.
type TOMLBackend struct {
	URL    string `toml:"url,omitempty"`
	APIKey string `toml:"api_key,omitempty"`
}

// TOMLTimeline configures the local timeline.
type TOMLTimeline struct {
	DatabasePath  string `toml:"database_path,omitempty"`
	DefaultLimit  int    `toml:"default_limit,omitempty"`
	WatchDatabase *bool  `toml:"watch_database"`
}

// LoadTOMLConfig loads the TOML overlay from the config directory.
// Returns (nil, nil) when no overlay file exists.
func LoadTOMLConfig() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	tomlPath := filepath.Join(configDir, TOMLFileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadTOMLConfigFrom(tomlPath)
}

// LoadTOMLConfigFrom parses the TOML file at path into the overlay
// Config shape. Fields absent from the file stay at their zero value.
func LoadTOMLConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read TOML config: %w", err)
	}

	var tc TOMLConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	return &Config{
		BackendURL:       tc.Backend.URL,
		APIKey:           tc.Backend.APIKey,
		DatabasePath:     tc.Timeline.DatabasePath,
		DefaultLimit:     tc.Timeline.DefaultLimit,
		WatchDatabase:    tc.Timeline.WatchDatabase,
		TelemetryEnabled: tc.Telemetry,
	}, nil
}

// SaveTOMLConfigTo writes the TOML overlay to path.
func SaveTOMLConfigTo(tc *TOMLConfig, path string) error {
	data, err := toml.Marshal(tc)
	if err != nil {
		return fmt.Errorf("failed to marshal TOML config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
