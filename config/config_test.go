package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/log"
)

// TestMain runs before all tests to set up the test environment
func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

func TestDefaultConfig(t *testing.T) {
	t.Run("creates config with default values", func(t *testing.T) {
		config := DefaultConfig()

		assert.NotNil(t, config)
		assert.Empty(t, config.BackendURL)
		assert.Empty(t, config.DatabasePath)
		assert.Equal(t, ledger.DefaultLimit, config.DefaultLimit)
		assert.True(t, config.IsWatchEnabled())
		assert.True(t, config.IsTelemetryEnabled())
	})

	t.Run("pointer flags default to true when unset", func(t *testing.T) {
		config := &Config{}

		assert.True(t, config.IsWatchEnabled())
		assert.True(t, config.IsTelemetryEnabled())

		falseVal := false
		config.WatchDatabase = &falseVal
		config.TelemetryEnabled = &falseVal
		assert.False(t, config.IsWatchEnabled())
		assert.False(t, config.IsTelemetryEnabled())
	})
}

func TestGetConfigDir(t *testing.T) {
	t.Run("returns valid config directory", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		configDir, err := GetConfigDir()

		require.NoError(t, err)
		assert.NotEmpty(t, configDir)
		assert.True(t, strings.HasSuffix(configDir, filepath.Join(".config", "tally")))
		assert.True(t, filepath.IsAbs(configDir))
	})

	t.Run("migrates legacy .tally to .config/tally", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		oldDir := filepath.Join(tempHome, ".tally")
		require.NoError(t, os.MkdirAll(oldDir, 0755))
		require.NoError(t, os.WriteFile(
			filepath.Join(oldDir, "config.json"),
			[]byte(`{"default_limit":50}`), 0644))

		configDir, err := GetConfigDir()
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(configDir, filepath.Join(".config", "tally")))

		// Old dir should be gone
		_, err = os.Stat(oldDir)
		assert.True(t, os.IsNotExist(err))

		// New dir should contain the migrated file with original contents intact
		data, err := os.ReadFile(filepath.Join(configDir, "config.json"))
		require.NoError(t, err)
		assert.Equal(t, `{"default_limit":50}`, string(data))
	})

	t.Run("skips migration when .config/tally already exists", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		newDir := filepath.Join(tempHome, ".config", "tally")
		oldDir := filepath.Join(tempHome, ".tally")
		require.NoError(t, os.MkdirAll(newDir, 0755))
		require.NoError(t, os.MkdirAll(oldDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(oldDir, "config.json"), []byte(`{"default_limit":10}`), 0644))

		configDir, err := GetConfigDir()
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(configDir, filepath.Join(".config", "tally")))

		// Old dir should still exist with original contents untouched
		_, err = os.Stat(oldDir)
		assert.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(oldDir, "config.json"))
		require.NoError(t, err)
		assert.Equal(t, `{"default_limit":10}`, string(data))
	})

	t.Run("no-ops when neither dir exists", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		configDir, err := GetConfigDir()
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(configDir, filepath.Join(".config", "tally")))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("returns default config when file doesn't exist", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		config := LoadConfig()

		assert.NotNil(t, config)
		assert.Empty(t, config.BackendURL)
		assert.Equal(t, ledger.DefaultLimit, config.DefaultLimit)
		assert.True(t, config.IsWatchEnabled())
	})

	t.Run("loads valid config file", func(t *testing.T) {
		tempHome := t.TempDir()
		configDir := filepath.Join(tempHome, ".config", "tally")
		err := os.MkdirAll(configDir, 0755)
		require.NoError(t, err)

		configPath := filepath.Join(configDir, ConfigFileName)
		configContent := `{
			"backend_url": "http://athena:4242",
			"api_key": "tally-dev-key",
			"database_path": "/tmp/other-ledger.db",
			"default_limit": 50
		}`
		err = os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		t.Setenv("HOME", tempHome)

		config := LoadConfig()

		assert.NotNil(t, config)
		assert.Equal(t, "http://athena:4242", config.BackendURL)
		assert.Equal(t, "tally-dev-key", config.APIKey)
		assert.Equal(t, "/tmp/other-ledger.db", config.DatabasePath)
		assert.Equal(t, 50, config.DefaultLimit)
	})

	t.Run("returns default config on invalid JSON", func(t *testing.T) {
		tempHome := t.TempDir()
		configDir := filepath.Join(tempHome, ".config", "tally")
		err := os.MkdirAll(configDir, 0755)
		require.NoError(t, err)

		configPath := filepath.Join(configDir, ConfigFileName)
		invalidContent := `{"invalid": json content}`
		err = os.WriteFile(configPath, []byte(invalidContent), 0644)
		require.NoError(t, err)

		t.Setenv("HOME", tempHome)

		config := LoadConfig()

		assert.NotNil(t, config)
		assert.Empty(t, config.BackendURL)
		assert.Equal(t, ledger.DefaultLimit, config.DefaultLimit)
	})

	t.Run("TOML overlay wins over JSON", func(t *testing.T) {
		tempHome := t.TempDir()
		configDir := filepath.Join(tempHome, ".config", "tally")
		require.NoError(t, os.MkdirAll(configDir, 0755))

		jsonContent := `{"backend_url": "http://json-host:1", "default_limit": 50}`
		require.NoError(t, os.WriteFile(
			filepath.Join(configDir, ConfigFileName), []byte(jsonContent), 0644))

		tomlContent := "[backend]\nurl = \"http://toml-host:2\"\n"
		require.NoError(t, os.WriteFile(
			filepath.Join(configDir, TOMLFileName), []byte(tomlContent), 0644))

		t.Setenv("HOME", tempHome)

		config := LoadConfig()

		assert.Equal(t, "http://toml-host:2", config.BackendURL)
		// Fields the TOML file doesn't carry keep their JSON values
		assert.Equal(t, 50, config.DefaultLimit)
	})

	t.Run("environment overrides both files", func(t *testing.T) {
		tempHome := t.TempDir()
		configDir := filepath.Join(tempHome, ".config", "tally")
		require.NoError(t, os.MkdirAll(configDir, 0755))

		jsonContent := `{"backend_url": "http://json-host:1"}`
		require.NoError(t, os.WriteFile(
			filepath.Join(configDir, ConfigFileName), []byte(jsonContent), 0644))

		t.Setenv("HOME", tempHome)
		t.Setenv("TALLY_BACKEND_URL", "http://env-host:3")
		t.Setenv("TALLY_DEFAULT_LIMIT", "100")

		config := LoadConfig()

		assert.Equal(t, "http://env-host:3", config.BackendURL)
		assert.Equal(t, 100, config.DefaultLimit)
	})

	t.Run("snaps odd page sizes to a selectable one", func(t *testing.T) {
		tempHome := t.TempDir()
		configDir := filepath.Join(tempHome, ".config", "tally")
		require.NoError(t, os.MkdirAll(configDir, 0755))

		configContent := `{"default_limit": 33}`
		require.NoError(t, os.WriteFile(
			filepath.Join(configDir, ConfigFileName), []byte(configContent), 0644))

		t.Setenv("HOME", tempHome)

		config := LoadConfig()

		assert.Equal(t, 25, config.DefaultLimit)
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("saves config to file", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		testConfig := &Config{
			BackendURL:   "http://athena:4242",
			APIKey:       "tally-dev-key",
			DefaultLimit: 100,
		}

		err := SaveConfig(testConfig)
		assert.NoError(t, err)

		configDir := filepath.Join(tempHome, ".config", "tally")
		configPath := filepath.Join(configDir, ConfigFileName)

		assert.FileExists(t, configPath)

		loadedConfig := LoadConfig()
		assert.Equal(t, testConfig.BackendURL, loadedConfig.BackendURL)
		assert.Equal(t, testConfig.APIKey, loadedConfig.APIKey)
		assert.Equal(t, testConfig.DefaultLimit, loadedConfig.DefaultLimit)
	})
}

func TestDBPath(t *testing.T) {
	t.Run("prefers the configured override", func(t *testing.T) {
		config := &Config{DatabasePath: "/var/lib/tally/ledger.db"}
		assert.Equal(t, "/var/lib/tally/ledger.db", config.DBPath())
	})

	t.Run("defaults to ledger.db under the config dir", func(t *testing.T) {
		tempHome := t.TempDir()
		t.Setenv("HOME", tempHome)

		config := &Config{}
		assert.True(t, strings.HasSuffix(config.DBPath(),
			filepath.Join(".config", "tally", DatabaseFileName)))
	})
}
