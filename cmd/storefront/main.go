package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/config"
	"github.com/maltedev/storefront-scraper/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

// errFailed signals a non-zero exit after the failure was already printed.
var errFailed = errors.New("one or more operations failed")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Scrape Riachuelo product pages and enrich them with AI-generated attributes",
		Long: `storefront searches the Riachuelo storefront for a product code, extracts
the product detail page into a structured record, optionally persists it, and
enriches it through three AI stages (attributes, categorization, content).

Configuration comes from storefront.yaml, a .env file and STOREFRONT_*
environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		scrapeCmd(),
		enrichCmd(),
		extractCmd(),
		exportCmd(),
		migrateCmd(),
		serveCmd(),
		workerCmd(),
		outboxCmd(),
	)

	return root
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return nil
}
