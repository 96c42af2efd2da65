package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTOMLConfig(t *testing.T) {
	t.Run("parses valid TOML with backend and timeline tables", func(t *testing.T) {
		tmpDir := t.TempDir()
		tomlPath := filepath.Join(tmpDir, "config.toml")

		content := `
telemetry_enabled = false

[backend]
url = "http://athena:4242"
api_key = "tally-dev-key"

[timeline]
database_path = "/var/lib/tally/ledger.db"
default_limit = 50
watch_database = false
`
		err := os.WriteFile(tomlPath, []byte(content), 0o644)
		require.NoError(t, err)

		tc, err := LoadTOMLConfigFrom(tomlPath)
		require.NoError(t, err)

		assert.Equal(t, "http://athena:4242", tc.BackendURL)
		assert.Equal(t, "tally-dev-key", tc.APIKey)
		assert.Equal(t, "/var/lib/tally/ledger.db", tc.DatabasePath)
		assert.Equal(t, 50, tc.DefaultLimit)

		require.NotNil(t, tc.WatchDatabase)
		assert.False(t, *tc.WatchDatabase)
		require.NotNil(t, tc.TelemetryEnabled)
		assert.False(t, *tc.TelemetryEnabled)
	})

	t.Run("absent tables leave the overlay empty", func(t *testing.T) {
		tmpDir := t.TempDir()
		tomlPath := filepath.Join(tmpDir, "config.toml")
		err := os.WriteFile(tomlPath, []byte("telemetry_enabled = true\n"), 0o644)
		require.NoError(t, err)

		tc, err := LoadTOMLConfigFrom(tomlPath)
		require.NoError(t, err)

		assert.Empty(t, tc.BackendURL)
		assert.Empty(t, tc.DatabasePath)
		assert.Zero(t, tc.DefaultLimit)
		assert.Nil(t, tc.WatchDatabase)
		require.NotNil(t, tc.TelemetryEnabled)
		assert.True(t, *tc.TelemetryEnabled)
	})

	t.Run("returns error on missing file", func(t *testing.T) {
		_, err := LoadTOMLConfigFrom("/nonexistent/config.toml")
		assert.Error(t, err)
	})

	t.Run("returns error on invalid TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		tomlPath := filepath.Join(tmpDir, "config.toml")
		err := os.WriteFile(tomlPath, []byte("[invalid toml\n"), 0o644)
		require.NoError(t, err)

		_, err = LoadTOMLConfigFrom(tomlPath)
		assert.Error(t, err)
	})
}

func TestSaveTOMLConfig(t *testing.T) {
	t.Run("round-trips through save and load", func(t *testing.T) {
		tmpDir := t.TempDir()
		tomlPath := filepath.Join(tmpDir, "config.toml")

		falseVal := false
		original := &TOMLConfig{
			Backend: TOMLBackend{
				URL:    "http://athena:4242",
				APIKey: "tally-dev-key",
			},
			Timeline: TOMLTimeline{
				DefaultLimit:  50,
				WatchDatabase: &falseVal,
			},
			Telemetry: &falseVal,
		}

		err := SaveTOMLConfigTo(original, tomlPath)
		require.NoError(t, err)

		loaded, err := LoadTOMLConfigFrom(tomlPath)
		require.NoError(t, err)

		assert.Equal(t, "http://athena:4242", loaded.BackendURL)
		assert.Equal(t, "tally-dev-key", loaded.APIKey)
		assert.Equal(t, 50, loaded.DefaultLimit)
		require.NotNil(t, loaded.WatchDatabase)
		assert.False(t, *loaded.WatchDatabase)
		require.NotNil(t, loaded.TelemetryEnabled)
		assert.False(t, *loaded.TelemetryEnabled)
	})
}
