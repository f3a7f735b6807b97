package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/database"
	"github.com/maltedev/storefront-scraper/internal/events"
)

var (
	workerGroup    string
	workerConsumer string
)

func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Enrich products as PRODUCT_SCRAPED events arrive on the Redis stream",
		Long: `Consume the product stream fed by "serve" and run the AI enrichment
stages for every newly scraped product. Enrichments are stored when a storage
driver is configured.`,
		Args: cobra.NoArgs,
		RunE: runWorker,
	}

	cmd.Flags().StringVar(&workerGroup, "group", "storefront-enrichment", "consumer group name")
	cmd.Flags().StringVar(&workerConsumer, "consumer", "", "consumer name (default: hostname)")

	return cmd
}

func runWorker(cmd *cobra.Command, args []string) error {
	if cfg.Redis.Addr == "" {
		return errors.New("worker needs redis.addr")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	enricher, release, err := newEnrichPipeline(ctx, cfg, st.enrichments, logger)
	if err != nil {
		return err
	}
	defer release()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	name := workerConsumer
	if name == "" {
		name, _ = os.Hostname()
	}

	consumer := events.NewConsumer(redisClient, events.ConsumerConfig{
		Stream:   database.DefaultStream,
		Group:    workerGroup,
		Consumer: name,
	}, logger)
	consumer.Handle(database.EventProductScraped, events.EnrichScraped(enricher, logger))

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("worker stopped")
	return nil
}
