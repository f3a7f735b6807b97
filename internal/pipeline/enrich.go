package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/storefront-scraper/internal/ai"
	"github.com/maltedev/storefront-scraper/internal/enrichment"
	"github.com/maltedev/storefront-scraper/internal/models"
)

// Enricher produces an enrichment from a product's keyed fields.
type Enricher interface {
	ModelName() string
	Enrich(ctx context.Context, fields map[string]any, productID *int64) (*models.ProductEnrichment, error)
}

type EnrichInput struct {
	Fields    map[string]any
	ProductID *int64
}

type EnrichPipeline struct {
	enricher    Enricher
	enrichments EnrichmentRepository
	logger      *slog.Logger
}

// NewEnrichPipeline accepts a nil repository, in which case nothing is
// persisted.
func NewEnrichPipeline(enricher Enricher, enrichments EnrichmentRepository, logger *slog.Logger) *EnrichPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichPipeline{
		enricher:    enricher,
		enrichments: enrichments,
		logger:      logger.With("component", "enrich_pipeline"),
	}
}

// Enrich persists only when both a repository and a product id are present.
func (p *EnrichPipeline) Enrich(ctx context.Context, in EnrichInput) (result EnrichResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic during enrichment", "panic", r)
			result = &Failure{Kind: KindUnexpected, Message: fmt.Sprint(r)}
		}
	}()

	name, _ := in.Fields["name"].(string)
	if name == "" {
		name = "Unknown"
	}
	p.logger.Info("starting product enrichment", "model", p.enricher.ModelName(), "product_name", name)

	e, err := p.enricher.Enrich(ctx, in.Fields, in.ProductID)
	if err != nil {
		return p.fail(err)
	}

	if p.enrichments != nil && in.ProductID != nil {
		p.logger.Info("saving enrichment", "product_id", *in.ProductID)
		saved, err := p.enrichments.Save(ctx, e)
		if err != nil {
			return p.fail(fmt.Errorf("failed to save enrichment: %w", err))
		}
		e = saved
	}

	p.logger.Info("product enrichment completed", "product_name", name)
	return &EnrichSuccess{Enrichment: e}
}

func (p *EnrichPipeline) fail(err error) *Failure {
	var gwErr *ai.GatewayError
	if errors.As(err, &gwErr) {
		attrs := []any{"error", err}
		var stageErr *enrichment.StageError
		if errors.As(err, &stageErr) {
			attrs = append(attrs, "stage", stageErr.Stage)
		}
		p.logger.Error("AI gateway error during enrichment", attrs...)
		return &Failure{Kind: KindAIGateway, Message: err.Error(), Step: StepAICall}
	}

	p.logger.Error("unexpected error during enrichment", "error", err)
	return &Failure{Kind: KindUnexpected, Message: err.Error()}
}
