package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyview/tally/app"
	"github.com/tallyview/tally/config"
	sentrypkg "github.com/tallyview/tally/internal/sentry"
	"github.com/tallyview/tally/internal/source"
	"github.com/tallyview/tally/log"
)

var (
	version      = "0.3.0"
	dbFlag       string
	backendFlag  string
	noWatchFlag  bool
	verboseFlag  bool
	resetYesFlag bool
	rootCmd      = &cobra.Command{
		Use:   "tally",
		Short: "tally - Browse your portfolio ledger as a timeline of grouped events.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg := config.LoadConfig()
			if err := sentrypkg.Init(version, cfg.IsTelemetryEnabled()); err != nil {
				// Non-fatal: sentry failure should not prevent startup
				_ = err
			}
			defer sentrypkg.Flush()
			defer sentrypkg.RecoverPanic()

			log.Initialize(verboseFlag)
			defer log.Close()

			// Flags override config
			if dbFlag != "" {
				cfg.DatabasePath = dbFlag
			}
			if backendFlag != "" {
				cfg.BackendURL = backendFlag
			}

			src, mode, err := source.Open(cfg)
			if err != nil {
				return fmt.Errorf("failed to open ledger source: %w", err)
			}
			defer src.Close()

			target := cfg.DBPath()
			if mode == source.ModeREST {
				target = cfg.BackendURL
			}
			sentrypkg.SetContext(mode, filepath.Base(target))

			watchPath := ""
			if mode == source.ModeSQLite && cfg.IsWatchEnabled() && !noWatchFlag {
				watchPath = cfg.DBPath()
			}

			return app.Run(ctx, src, app.Options{
				Mode:         mode,
				DefaultLimit: cfg.DefaultLimit,
				WatchPath:    watchPath,
			})
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Delete the local ledger database",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			dbPath := cfg.DBPath()

			if !resetYesFlag {
				return fmt.Errorf("refusing to delete %s without --yes", dbPath)
			}

			if err := os.Remove(dbPath); err != nil {
				if os.IsNotExist(err) {
					fmt.Printf("No ledger database at %s\n", dbPath)
					return nil
				}
				return fmt.Errorf("failed to remove ledger database: %w", err)
			}

			// SQLite leaves journal siblings behind
			for _, suffix := range []string{"-wal", "-shm"} {
				_ = os.Remove(dbPath + suffix)
			}

			fmt.Printf("Ledger database %s has been removed\n", dbPath)
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}

			redacted := *cfg
			if redacted.APIKey != "" {
				redacted.APIKey = "(redacted)"
			}
			configJson, _ := json.MarshalIndent(&redacted, "", "  ")

			fmt.Printf("Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Printf("Database: %s\n", cfg.DBPath())

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tally",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tally version %s\n", version)
			fmt.Printf("https://github.com/tallyview/tally/releases/tag/v%s\n", version)
		},
	}
)

func init() {
	rootCmd.Flags().StringVar(&dbFlag, "db", "",
		"Path to the ledger database (overrides config)")
	rootCmd.Flags().StringVar(&backendFlag, "backend", "",
		"URL of a remote ledger daemon, e.g. 'http://127.0.0.1:4242' (overrides config)")
	rootCmd.Flags().BoolVar(&noWatchFlag, "no-watch", false,
		"Don't refresh the timeline when the ledger database changes on disk")
	rootCmd.Flags().BoolVar(&verboseFlag, "verbose", false,
		"Enable debug logging to the log file")

	resetCmd.Flags().BoolVar(&resetYesFlag, "yes", false,
		"Delete without asking")

	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUnhealthy) {
			os.Exit(1)
		}
		fmt.Println(err)
	}
}
