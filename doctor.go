package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyview/tally/config"
	"github.com/tallyview/tally/internal/doctor"
	"github.com/tallyview/tally/log"
)

// errUnhealthy is returned when a check failed to signal exit code 1 without printing a message.
var errUnhealthy = errors.New("unhealthy")

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Probe the configured backend and report timeline readiness",
		Long: `Checks everything the timeline needs at startup:

  1. Config   (~/.config/tally resolves, config.json present)
  2. Backend  (local ledger database opens, or remote daemon responds)
  3. Ledger   (event groups present, unmatched movements counted)

Exit code 0 if no check failed, exit code 1 otherwise. Warnings
(missing database, empty ledger) don't fail the run.`,
		RunE: runDoctor,
		// Health failures are not usage errors, keep the usage text quiet.
		SilenceUsage: true,
		// Suppress cobra's "Error: ..." line for the unhealthy sentinel.
		SilenceErrors: true,
	}
	return cmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	log.Initialize(false)
	defer log.Close()

	cfg := config.LoadConfig()
	report := doctor.Run(cmd.Context(), cfg)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nBackend: %s\n\n", report.Mode)
	for _, c := range report.Checks {
		fmt.Fprintf(out, "  %s %-10s %s\n", statusGlyph(c.Status), c.Name, c.Detail)
	}

	ok, total := report.Summary()
	fmt.Fprintf(out, "\nHealth: %d/%d OK\n", ok, total)

	for _, c := range report.Checks {
		if c.Status == doctor.StatusFailed {
			return errUnhealthy
		}
	}
	return nil
}

func statusGlyph(s doctor.CheckStatus) string {
	switch s {
	case doctor.StatusOK:
		return "✓"
	case doctor.StatusWarning:
		return "!"
	case doctor.StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

func init() {
	rootCmd.AddCommand(newDoctorCmd())
}
