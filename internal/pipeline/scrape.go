package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/storefront-scraper/internal/scraper"
)

const (
	stepSearch   = "search"
	stepLocate   = "locate"
	stepNavigate = "navigate"
	stepExtract  = "extract"
	stepPersist  = "persist"
)

type ScrapeInput struct {
	Query          string
	SaveDebugFiles bool
}

// ScrapePipeline runs search, locate, navigate, extract and an optional
// persist step against one storefront. It owns no browser resources.
type ScrapePipeline struct {
	gateway  scraper.Gateway
	products ProductRepository
	logger   *slog.Logger
}

// NewScrapePipeline accepts a nil repository, in which case nothing is
// persisted.
func NewScrapePipeline(gateway scraper.Gateway, products ProductRepository, logger *slog.Logger) *ScrapePipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapePipeline{
		gateway:  gateway,
		products: products,
		logger:   logger.With("component", "scrape_pipeline"),
	}
}

// Scrape never returns a raw error: every failure becomes a *Failure.
func (p *ScrapePipeline) Scrape(ctx context.Context, in ScrapeInput) (result ScrapeResult) {
	step := stepSearch
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic during scrape", "panic", r, "step", step)
			result = &Failure{Kind: KindUnexpected, Message: fmt.Sprint(r), Query: in.Query, Step: step}
		}
	}()

	p.logger.Info("starting product scrape", "platform", p.gateway.PlatformName(), "query", in.Query)

	searchURL, err := p.gateway.NavigateToSearch(in.Query)
	if err != nil {
		return p.fail(in.Query, step, err)
	}
	p.logger.Info("search page loaded", "url", searchURL)

	step = stepLocate
	link, err := p.gateway.FindProductLink(in.Query)
	if err != nil {
		return p.fail(in.Query, step, err)
	}
	p.logger.Info("product link found", "url", link)

	step = stepNavigate
	if err := p.gateway.NavigateToProduct(ctx, link, in.SaveDebugFiles); err != nil {
		return p.fail(in.Query, step, err)
	}

	step = stepExtract
	product, err := p.gateway.ExtractProductDetails()
	if err != nil {
		return p.fail(in.Query, step, err)
	}

	if p.products != nil {
		step = stepPersist
		p.logger.Info("saving product", "sku", product.SKU)
		saved, err := p.products.Save(ctx, product)
		if err != nil {
			return p.fail(in.Query, step, fmt.Errorf("failed to save product: %w", err))
		}
		product = saved
		p.logger.Info("product saved", "id", product.ID)
	}

	p.logger.Info("product scrape completed", "product_name", product.Name, "sku", product.SKU)
	return &ScrapeSuccess{Product: product}
}

func (p *ScrapePipeline) fail(query, step string, err error) *Failure {
	f := &Failure{Kind: KindUnexpected, Message: err.Error(), Query: query, Step: step}

	var notFound *scraper.NotFoundError
	var navErr *scraper.NavigationError
	switch {
	case errors.As(err, &notFound):
		f.Kind = KindNotFound
		p.logger.Error("product not found", "query", notFound.Query)
	case errors.As(err, &navErr):
		f.Kind = KindNavigation
		p.logger.Error("navigation failed", "url", navErr.URL, "reason", navErr.Reason)
	default:
		p.logger.Error("unexpected error during scrape", "error", err, "step", step)
	}
	return f
}
