package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/database"
)

var outboxRetention time.Duration

func outboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and maintain the postgres event outbox",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print pending and dead-lettered event counts",
		Args:  cobra.NoArgs,
		RunE: withOutbox(func(cmd *cobra.Command, repo *database.OutboxRepository) error {
			pending, dead, err := repo.Backlog(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int64{"pending": pending, "dead_letter": dead})
		}),
	}

	requeue := &cobra.Command{
		Use:   "requeue",
		Short: "Move dead-lettered events back to pending",
		Args:  cobra.NoArgs,
		RunE: withOutbox(func(cmd *cobra.Command, repo *database.OutboxRepository) error {
			n, err := repo.RequeueDeadLetters(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("dead letters requeued", "count", n)
			return nil
		}),
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete processed events older than --older-than",
		Args:  cobra.NoArgs,
		RunE: withOutbox(func(cmd *cobra.Command, repo *database.OutboxRepository) error {
			n, err := repo.PurgeProcessed(cmd.Context(), outboxRetention)
			if err != nil {
				return err
			}
			logger.Info("processed events purged", "count", n, "older_than", outboxRetention)
			return nil
		}),
	}
	purge.Flags().DurationVar(&outboxRetention, "older-than", 7*24*time.Hour, "retention for processed events")

	cmd.AddCommand(stats, requeue, purge)
	return cmd
}

func withOutbox(fn func(cmd *cobra.Command, repo *database.OutboxRepository) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.close()
		if st.db == nil {
			return errors.New("the outbox exists only with storage.driver postgres")
		}
		return fn(cmd, database.NewOutboxRepository(st.db))
	}
}
