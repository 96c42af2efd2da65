// Package doctor probes the configured ledger backend and reports what
// the timeline will find when it starts.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tallyview/tally/config"
	"github.com/tallyview/tally/internal/restapi"
	"github.com/tallyview/tally/internal/source"
	"github.com/tallyview/tally/internal/store"
	"github.com/tallyview/tally/ledger"
)

// probeTimeout bounds each network or database probe.
const probeTimeout = 5 * time.Second

// CheckStatus represents the outcome of a single doctor check.
type CheckStatus int

const (
	StatusOK      CheckStatus = iota
	StatusWarning             // usable, but worth a look
	StatusFailed
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CheckResult is one probe's outcome.
type CheckResult struct {
	Name   string
	Status CheckStatus
	Detail string // e.g. resolved path, group count, error message
}

// Report is the complete output of tally doctor.
type Report struct {
	Mode   string // backend mode the probes ran against
	Checks []CheckResult
}

// Summary returns (ok, total) counts across all checks. Warnings count
// toward the total but not toward ok.
func (r *Report) Summary() (int, int) {
	ok := 0
	for _, c := range r.Checks {
		if c.Status == StatusOK {
			ok++
		}
	}
	return ok, len(r.Checks)
}

// Run executes every check that applies to the configured backend.
func Run(ctx context.Context, cfg *config.Config) *Report {
	report := &Report{}

	report.Checks = append(report.Checks, checkConfig())

	if cfg.BackendURL != "" {
		report.Mode = source.ModeREST
		report.Checks = append(report.Checks, checkDaemon(ctx, cfg)...)
	} else {
		report.Mode = source.ModeSQLite
		report.Checks = append(report.Checks, checkDatabase(ctx, cfg)...)
	}

	return report
}

func checkConfig() CheckResult {
	res := CheckResult{Name: "config"}

	configDir, err := config.GetConfigDir()
	if err != nil {
		res.Status = StatusFailed
		res.Detail = err.Error()
		return res
	}

	if _, err := os.Stat(filepath.Join(configDir, config.ConfigFileName)); os.IsNotExist(err) {
		res.Status = StatusWarning
		res.Detail = fmt.Sprintf("%s (no config.json, defaults in effect)", configDir)
		return res
	}

	res.Detail = configDir
	return res
}

func checkDatabase(ctx context.Context, cfg *config.Config) []CheckResult {
	dbPath := cfg.DBPath()
	db := CheckResult{Name: "database"}

	info, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		db.Status = StatusWarning
		db.Detail = fmt.Sprintf("%s not found (run `tally seed` for demo data)", dbPath)
		return []CheckResult{db}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		db.Status = StatusFailed
		db.Detail = err.Error()
		return []CheckResult{db}
	}
	defer st.Close()

	db.Detail = fmt.Sprintf("%s (%s)", dbPath, humanize.IBytes(uint64(info.Size())))

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	return []CheckResult{db, checkLedger(probeCtx, st), checkMovements(probeCtx, st)}
}

func checkDaemon(ctx context.Context, cfg *config.Config) []CheckResult {
	client := restapi.New(cfg.BackendURL, cfg.APIKey)
	defer client.Close()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ping := CheckResult{Name: "daemon"}
	started := time.Now()
	if err := client.Ping(probeCtx); err != nil {
		ping.Status = StatusFailed
		ping.Detail = err.Error()
		return []CheckResult{ping}
	}
	ping.Detail = fmt.Sprintf("%s (responding in %s)",
		cfg.BackendURL, time.Since(started).Round(time.Millisecond))

	return []CheckResult{ping, checkLedger(probeCtx, client), checkMovements(probeCtx, client)}
}

// checkLedger samples the first page; both backends serve it the same way.
func checkLedger(ctx context.Context, src ledger.Source) CheckResult {
	res := CheckResult{Name: "ledger"}

	page, err := src.FetchPage(ctx, ledger.Query{}, 1, ledger.DefaultLimit)
	if err != nil {
		res.Status = StatusFailed
		res.Detail = err.Error()
		return res
	}

	if page.Total == 0 {
		res.Status = StatusWarning
		res.Detail = "ledger is empty"
		return res
	}

	res.Detail = fmt.Sprintf("%s event groups", humanize.Comma(int64(page.Total)))
	return res
}

func checkMovements(ctx context.Context, src ledger.Source) CheckResult {
	res := CheckResult{Name: "movements"}

	movements, err := src.UnmatchedMovements(ctx)
	if err != nil {
		res.Status = StatusFailed
		res.Detail = err.Error()
		return res
	}

	if len(movements) == 0 {
		res.Detail = "no unmatched movements"
		return res
	}
	res.Detail = fmt.Sprintf("%d unmatched movements", len(movements))
	return res
}
