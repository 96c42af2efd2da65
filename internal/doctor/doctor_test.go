package doctor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyview/tally/config"
	"github.com/tallyview/tally/internal/store"
	"github.com/tallyview/tally/ledger"
	"github.com/tallyview/tally/log"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

// seedDB creates a ledger database with a couple of groups at path.
func seedDB(t *testing.T, path string) {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []ledger.Event{
		{Identifier: 1, GroupID: "g1", EntryType: ledger.EntryEVM, Detail: &ledger.EventDetail{
			Timestamp: ts, Location: "ethereum", EventType: "receive", Asset: "ETH", Amount: "1",
		}},
		{Identifier: 2, GroupID: "g2", EntryType: ledger.EntryEVM, Detail: &ledger.EventDetail{
			Timestamp: ts.Add(-time.Hour), Location: "ethereum", EventType: "spend", Asset: "ETH", Amount: "0.5",
		}},
	}
	require.NoError(t, st.InsertEvents(context.Background(), events))
}

func checkByName(t *testing.T, r *Report, name string) CheckResult {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("report has no %q check: %+v", name, r.Checks)
	return CheckResult{}
}

func TestRun_SQLite(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	seedDB(t, dbPath)

	report := Run(context.Background(), &config.Config{DatabasePath: dbPath})

	assert.Equal(t, "sqlite", report.Mode)

	db := checkByName(t, report, "database")
	assert.Equal(t, StatusOK, db.Status)
	assert.Contains(t, db.Detail, dbPath)

	led := checkByName(t, report, "ledger")
	assert.Equal(t, StatusOK, led.Status)
	assert.Contains(t, led.Detail, "2 event groups")

	mov := checkByName(t, report, "movements")
	assert.Equal(t, StatusOK, mov.Status)
	assert.Equal(t, "no unmatched movements", mov.Detail)
}

func TestRun_MissingDatabase(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	report := Run(context.Background(), &config.Config{DatabasePath: dbPath})

	db := checkByName(t, report, "database")
	assert.Equal(t, StatusWarning, db.Status)
	assert.Contains(t, db.Detail, "not found")

	// No point probing a database that isn't there
	assert.Len(t, report.Checks, 2)
}

func TestRun_EmptyLedger(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	report := Run(context.Background(), &config.Config{DatabasePath: dbPath})

	led := checkByName(t, report, "ledger")
	assert.Equal(t, StatusWarning, led.Status)
	assert.Equal(t, "ledger is empty", led.Detail)
}

func TestRun_Daemon(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/1/ping":
			fmt.Fprint(w, `{"result": true, "message": ""}`)
		case "/api/1/events":
			fmt.Fprint(w, `{"result": {"entries": [], "entries_found": 0, "entries_limit": -1, "entries_total": 1250}, "message": ""}`)
		case "/api/1/movements/unmatched":
			fmt.Fprint(w, `{"result": {"entries": [{"identifier": 9, "group_identifier": "m1", "timestamp": 1764590400, "location": "kraken", "direction": "deposit", "asset": "BTC", "amount": "0.2", "candidates": []}]}, "message": ""}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	report := Run(context.Background(), &config.Config{BackendURL: server.URL})

	assert.Equal(t, "rest", report.Mode)

	daemon := checkByName(t, report, "daemon")
	assert.Equal(t, StatusOK, daemon.Status)
	assert.Contains(t, daemon.Detail, server.URL)
	assert.Contains(t, daemon.Detail, "responding in")

	led := checkByName(t, report, "ledger")
	assert.Equal(t, StatusOK, led.Status)
	assert.Contains(t, led.Detail, "1,250 event groups")

	mov := checkByName(t, report, "movements")
	assert.Equal(t, StatusOK, mov.Status)
	assert.Equal(t, "1 unmatched movements", mov.Detail)
}

func TestRun_DaemonUnreachable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	report := Run(context.Background(), &config.Config{BackendURL: "http://127.0.0.1:1"})

	daemon := checkByName(t, report, "daemon")
	assert.Equal(t, StatusFailed, daemon.Status)

	// The sample fetch is skipped when the daemon is down
	assert.Len(t, report.Checks, 2)
}

func TestSummary(t *testing.T) {
	report := &Report{Checks: []CheckResult{
		{Name: "config", Status: StatusOK},
		{Name: "database", Status: StatusWarning},
		{Name: "ledger", Status: StatusFailed},
	}}

	ok, total := report.Summary()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 3, total)
}

func TestCheckStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "warning", StatusWarning.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
