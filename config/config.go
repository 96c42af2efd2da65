package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/log"
)

const (
	ConfigFileName = "config.json"
	// DatabaseFileName is the ledger database created under the config
	// directory when no explicit path is configured.
	DatabaseFileName = "ledger.db"
)

// GetConfigDir returns the path to the application's configuration directory.
// Uses XDG-compliant ~/.config/tally/. On first run, migrates the legacy
// ~/.tally directory.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	newDir := filepath.Join(homeDir, ".config", "tally")

	// Fast path when the directory already exists
	if _, err := os.Stat(newDir); err == nil {
		return newDir, nil
	}

	oldDir := filepath.Join(homeDir, ".tally")
	if _, err := os.Stat(oldDir); err == nil {
		// Ensure parent ~/.config/ exists
		if mkErr := os.MkdirAll(filepath.Dir(newDir), 0755); mkErr != nil {
			log.ErrorLog.Printf("failed to create %s: %v", filepath.Dir(newDir), mkErr)
			return oldDir, nil
		}
		if renameErr := os.Rename(oldDir, newDir); renameErr != nil {
			log.ErrorLog.Printf("failed to migrate %s to %s: %v", oldDir, newDir, renameErr)
			return oldDir, nil
		}
	}

	return newDir, nil
}

// Config represents the application configuration
type Config struct {
	// BackendURL points the timeline at a remote ledger daemon
	// (e.g. "http://127.0.0.1:4242"). When empty, the local SQLite
	// database is opened directly.
	BackendURL string `json:"backend_url,omitempty" env:"TALLY_BACKEND_URL"`
	// APIKey authenticates requests against the remote daemon.
	APIKey string `json:"api_key,omitempty" env:"TALLY_API_KEY"`
	// DatabasePath overrides the default ledger database location.
	DatabasePath string `json:"database_path,omitempty" env:"TALLY_DB_PATH"`
	// DefaultLimit is the page size the timeline opens with.
	DefaultLimit int `json:"default_limit,omitempty" env:"TALLY_DEFAULT_LIMIT"`
	// WatchDatabase controls whether the timeline refreshes itself when the
	// ledger database changes on disk. Defaults to true when not set.
	WatchDatabase *bool `json:"watch_database,omitempty"`
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool `json:"telemetry_enabled,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	trueVal := true
	return &Config{
		DefaultLimit:  ledger.DefaultLimit,
		WatchDatabase: &trueVal,
	}
}

// IsWatchEnabled returns whether the ledger database is watched for changes.
// Defaults to true when the field is not set.
func (c *Config) IsWatchEnabled() bool {
	if c.WatchDatabase == nil {
		return true
	}
	return *c.WatchDatabase
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// DBPath returns the ledger database path: the configured override when set,
// otherwise ledger.db under the config directory.
func (c *Config) DBPath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DatabaseFileName
	}
	return filepath.Join(configDir, DatabaseFileName)
}

// LoadConfig assembles the effective configuration: config.json as the
// base, the config.toml overlay on top, environment variables last.
func LoadConfig() *Config {
	config := loadConfigFile()

	// Overlay TOML config if it exists (TOML wins over JSON for the fields it carries)
	tomlResult, tomlErr := LoadTOMLConfig()
	if tomlErr != nil {
		log.WarningLog.Printf("failed to load TOML config: %v", tomlErr)
	} else if tomlResult != nil {
		if tomlResult.BackendURL != "" {
			config.BackendURL = tomlResult.BackendURL
		}
		if tomlResult.APIKey != "" {
			config.APIKey = tomlResult.APIKey
		}
		if tomlResult.DatabasePath != "" {
			config.DatabasePath = tomlResult.DatabasePath
		}
		if tomlResult.DefaultLimit != 0 {
			config.DefaultLimit = tomlResult.DefaultLimit
		}
		if tomlResult.WatchDatabase != nil {
			config.WatchDatabase = tomlResult.WatchDatabase
		}
		if tomlResult.TelemetryEnabled != nil {
			config.TelemetryEnabled = tomlResult.TelemetryEnabled
		}
	}

	if err := env.Parse(config); err != nil {
		log.WarningLog.Printf("failed to apply environment overrides: %v", err)
	}

	// Zero means unset; anything else snaps to a selectable page size.
	if config.DefaultLimit == 0 {
		config.DefaultLimit = ledger.DefaultLimit
	} else if !ledger.ValidLimit(config.DefaultLimit) {
		config.DefaultLimit = ledger.NearestLimit(config.DefaultLimit)
	}

	return config
}

func loadConfigFile() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}

	return &config
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
