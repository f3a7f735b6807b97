package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (postgres) or indexes (mongo) for the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := openStores(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.close()
			if st.migrate == nil {
				return errNoStorage
			}

			if err := st.migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate %s: %w", cfg.Storage.Driver, err)
			}

			logger.Info("migration completed", "driver", cfg.Storage.Driver)
			return nil
		},
	}
}
