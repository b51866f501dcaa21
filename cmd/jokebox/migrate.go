package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending schema migrations to the configured SQL database.

The in-memory store has no schema; migrate is a no-op for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			applied, err := migrate(cmd.Context(), st, logger)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintf(out, "No migrations to apply (driver: %s)\n", cfg.Database.Driver)
				return nil
			}
			for _, path := range applied {
				fmt.Fprintf(out, "applied %s\n", path)
			}
			return nil
		},
	}
}
