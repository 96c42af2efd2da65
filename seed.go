package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tallyview/tally/config"
	"github.com/tallyview/tally/internal/store"
	"github.com/tallyview/tally/log"
)

func newSeedCmd() *cobra.Command {
	var groups int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the local ledger database with demo data",
		Long: `Replaces the local ledger database contents with generated demo
groups: transfers, swap bursts, exchange deposits and withdrawals with
on-chain counterparts, and a sprinkle of ignored spam. Useful for trying
the timeline without a real accounting backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			if cfg.BackendURL != "" {
				return fmt.Errorf("seed writes the local database; unset backend_url (or TALLY_BACKEND_URL) first")
			}

			dbPath := cfg.DBPath()
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}

			st, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open ledger database: %w", err)
			}
			defer st.Close()

			if err := st.Seed(cmd.Context(), groups); err != nil {
				return fmt.Errorf("failed to seed ledger: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d demo groups into %s\n", groups, dbPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&groups, "groups", 120, "number of demo event groups to generate")
	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}
