package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/maltedev/storefront-scraper/internal/ai"
	"github.com/maltedev/storefront-scraper/internal/api"
	"github.com/maltedev/storefront-scraper/internal/artifacts"
	"github.com/maltedev/storefront-scraper/internal/browser"
	"github.com/maltedev/storefront-scraper/internal/config"
	"github.com/maltedev/storefront-scraper/internal/database"
	"github.com/maltedev/storefront-scraper/internal/enrichment"
	"github.com/maltedev/storefront-scraper/internal/pipeline"
	"github.com/maltedev/storefront-scraper/internal/scraper"
	"github.com/maltedev/storefront-scraper/internal/storage"
)

var errNoStorage = errors.New("this command needs storage.driver set to postgres or mongo")

// stores groups the repositories of the configured storage driver. With
// driver "none" every field except close is nil.
type stores struct {
	products    pipeline.ProductRepository
	enrichments pipeline.EnrichmentRepository
	catalog     api.Catalog
	db          *database.DB
	migrate     func(ctx context.Context) error
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := database.New(ctx, databaseConfig(cfg.Database))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("connected to postgres", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return &stores{
			products:    database.NewProductRepository(db),
			enrichments: database.NewEnrichmentRepository(db),
			catalog:     database.NewCatalogQuery(db),
			db:          db,
			migrate:     db.Migrate,
			close:       db.Close,
		}, nil

	case config.DriverMongo:
		store, err := storage.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		logger.Info("connected to mongodb", "database", cfg.Mongo.Database)
		return &stores{
			products:    store.Products(),
			enrichments: store.Enrichments(),
			catalog:     store.Catalog(),
			migrate:     store.EnsureIndexes,
			close: func() {
				if err := store.Close(context.Background()); err != nil {
					logger.Warn("failed to close mongodb", "error", err)
				}
			},
		}, nil

	default:
		return &stores{close: func() {}}, nil
	}
}

func databaseConfig(c config.DatabaseConfig) database.Config {
	return database.Config{
		URL:      c.URL,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Name,
		SSLMode:  c.SSLMode,
		MaxConns: c.MaxConns,
	}
}

func browserOptions(c config.BrowserConfig) *browser.Options {
	opts := browser.DefaultOptions()
	opts.Engine = strings.ToLower(c.Engine)
	opts.Headless = c.Headless
	if c.Timeout > 0 {
		opts.Timeout = c.Timeout
	}
	if c.ViewportWidth > 0 && c.ViewportHeight > 0 {
		opts.ViewportWidth = c.ViewportWidth
		opts.ViewportHeight = c.ViewportHeight
	}
	if c.Locale != "" {
		opts.Locale = c.Locale
	}
	if c.TimezoneID != "" {
		opts.TimezoneID = c.TimezoneID
	}
	opts.ProxyServer = c.ProxyServer
	return opts
}

// newUploader returns nil when no bucket is configured.
func newUploader(ctx context.Context, c config.ArtifactsConfig, logger *slog.Logger) (scraper.ArtifactUploader, error) {
	if c.Bucket == "" {
		return nil, nil
	}
	uploader, err := artifacts.NewS3Uploader(ctx, artifacts.S3Options{
		Bucket: c.Bucket,
		Prefix: c.Prefix,
		Region: c.Region,
	}, logger)
	if err != nil {
		return nil, err
	}
	return uploader, nil
}

// newEnrichPipeline wires Gemini behind the three-stage orchestrator. The
// returned func releases the Gemini client.
func newEnrichPipeline(ctx context.Context, cfg *config.Config, repo pipeline.EnrichmentRepository, logger *slog.Logger) (*pipeline.EnrichPipeline, func(), error) {
	if err := cfg.RequireAI(); err != nil {
		return nil, nil, err
	}

	client, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close gemini client", "error", err)
		}
	}

	orchestrator := enrichment.NewOrchestrator(client, logger)
	return pipeline.NewEnrichPipeline(orchestrator, repo, logger), release, nil
}

// readQueries reads one product code per line. Blank lines and lines
// starting with # are skipped; "-" reads stdin.
func readQueries(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open query file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseQueries(r)
}

func parseQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
