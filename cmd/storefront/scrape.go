package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/browser"
	"github.com/maltedev/storefront-scraper/internal/models"
	"github.com/maltedev/storefront-scraper/internal/pipeline"
	"github.com/maltedev/storefront-scraper/internal/scraper"
)

var (
	scrapeFile      string
	scrapeSaveDebug bool
	scrapeEnrich    bool
)

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [product-code]",
		Short: "Search the storefront for a product code and extract its detail page",
		Long: `Search Riachuelo for a product code, follow the first result and extract the
product record from its JSON-LD and DOM. With --file every line is scraped in
turn, one after another on the same page.

The product is saved when storage.driver is postgres or mongo. With --enrich
the scraped product is also run through the AI enrichment stages.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScrape,
	}

	cmd.Flags().StringVarP(&scrapeFile, "file", "f", "", "file with one product code per line (- for stdin)")
	cmd.Flags().BoolVar(&scrapeSaveDebug, "save-debug", false, "save a screenshot and HTML snapshot of the product page (default scraper.save_debug_files)")
	cmd.Flags().BoolVar(&scrapeEnrich, "enrich", false, "enrich each scraped product with AI")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	queries, err := scrapeQueries(args)
	if err != nil {
		return err
	}
	saveDebug := cfg.Scraper.SaveDebug
	if cmd.Flags().Changed("save-debug") {
		saveDebug = scrapeSaveDebug
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	uploader, err := newUploader(ctx, cfg.Artifacts, logger)
	if err != nil {
		return err
	}

	var enricher *pipeline.EnrichPipeline
	if scrapeEnrich {
		p, release, err := newEnrichPipeline(ctx, cfg, st.enrichments, logger)
		if err != nil {
			return err
		}
		defer release()
		enricher = p
	}

	// Browser setup
	b, err := browser.New(browserOptions(cfg.Browser), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		return err
	}

	storefront := scraper.NewStorefront(page, scraper.StorefrontOptions{
		BaseURL:     cfg.Scraper.BaseURL,
		LoadTimeout: cfg.Scraper.LoadTimeout,
		DebugDir:    cfg.Scraper.DebugDir,
		Uploader:    uploader,
	}, logger)
	scrape := pipeline.NewScrapePipeline(storefront, st.products, logger)

	out := cmd.OutOrStdout()
	failed := 0
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("scraping product", "query", query, "index", i+1, "total", len(queries))

		switch r := scrape.Scrape(ctx, pipeline.ScrapeInput{Query: query, SaveDebugFiles: saveDebug}).(type) {
		case *pipeline.ScrapeSuccess:
			product := r.Product
			if enricher != nil {
				if f := enrichScraped(ctx, enricher, product); f != nil {
					failed++
					if err := printJSON(out, f); err != nil {
						return err
					}
				}
			}
			if err := printJSON(out, product); err != nil {
				return err
			}

		case *pipeline.Failure:
			failed++
			if err := printJSON(out, r); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		logger.Warn("scrape run finished with failures", "failed", failed, "total", len(queries))
		return errFailed
	}
	return nil
}

func scrapeQueries(args []string) ([]string, error) {
	if scrapeFile != "" {
		if len(args) > 0 {
			return nil, errors.New("pass either a product code or --file, not both")
		}
		queries, err := readQueries(scrapeFile)
		if err != nil {
			return nil, err
		}
		if len(queries) == 0 {
			return nil, fmt.Errorf("no product codes in %s", scrapeFile)
		}
		return queries, nil
	}
	if len(args) == 0 {
		return nil, errors.New("a product code or --file is required")
	}
	return args, nil
}

// enrichScraped attaches the enrichment to product on success.
func enrichScraped(ctx context.Context, p *pipeline.EnrichPipeline, product *models.Product) *pipeline.Failure {
	in := pipeline.EnrichInput{Fields: product.Fields()}
	if product.ID != 0 {
		id := product.ID
		in.ProductID = &id
	}

	switch r := p.Enrich(ctx, in).(type) {
	case *pipeline.EnrichSuccess:
		product.SetEnrichedData(r.Enrichment)
		return nil
	case *pipeline.Failure:
		return r
	}
	return nil
}
