// Package source selects the ledger backend the timeline reads from.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tallyview/tally/config"
	"github.com/tallyview/tally/internal/restapi"
	"github.com/tallyview/tally/internal/store"
	"github.com/tallyview/tally/ledger"
)

// Backend modes reported by Open, shown in the status bar and by doctor.
const (
	ModeREST   = "rest"
	ModeSQLite = "sqlite"
)

// Open creates the ledger source selected by the config: a client for the
// remote daemon when a backend URL is configured, the local SQLite database
// otherwise. The REST client connects lazily; no network traffic happens
// until the first operation (or Ping).
func Open(cfg *config.Config) (ledger.Source, string, error) {
	if cfg.BackendURL != "" {
		return restapi.New(cfg.BackendURL, cfg.APIKey), ModeREST, nil
	}

	dbPath := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, "", fmt.Errorf("create database directory: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	return st, ModeSQLite, nil
}
