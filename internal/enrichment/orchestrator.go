package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/storefront-scraper/internal/models"
)

// Completer sends a system prompt plus a product payload to a language model
// and returns its reply as a JSON object.
type Completer interface {
	ModelName() string
	Complete(ctx context.Context, prompt string, payload map[string]any) (map[string]any, error)
}

// StageError identifies which enrichment stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Orchestrator runs the attributes, categorization and content stages in
// that order. A failing stage aborts the run; there are no partial results.
type Orchestrator struct {
	ai     Completer
	logger *slog.Logger
	now    func() time.Time
}

func NewOrchestrator(ai Completer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		ai:     ai,
		logger: logger.With("component", "enrichment"),
		now:    time.Now,
	}
}

func (o *Orchestrator) ModelName() string {
	return o.ai.ModelName()
}

func (o *Orchestrator) Enrich(ctx context.Context, fields map[string]any, productID *int64) (*models.ProductEnrichment, error) {
	o.logger.Info("step 1/3: extracting attributes")
	resp, err := o.complete(ctx, StageAttributes, attributesPrompt, pick(fields, attributesKeys...))
	if err != nil {
		return nil, err
	}
	attributes := parseAttributes(resp, fields)
	o.logger.Info("product attributes extracted", "key_features_count", len(attributes.KeyFeatures))

	o.logger.Info("step 2/3: generating categorization")
	resp, err = o.complete(ctx, StageCategorization, categorizationPrompt, pick(fields, categorizationKeys...))
	if err != nil {
		return nil, err
	}
	categorization := parseCategorization(resp)
	o.logger.Info("product categorization generated",
		"occasions_count", len(categorization.Occasions),
		"keywords_count", len(categorization.SearchKeywords))

	o.logger.Info("step 3/3: generating content")
	resp, err = o.complete(ctx, StageContent, contentPrompt, pick(fields, contentKeys...))
	if err != nil {
		return nil, err
	}
	content := parseContent(resp)
	o.logger.Info("marketing content generated", "highlights_count", len(content.MarketingHighlights))

	return &models.ProductEnrichment{
		ProductID:      productID,
		Attributes:     attributes,
		Categorization: categorization,
		Content:        content,
		Metadata: &models.EnrichmentMetadata{
			Model:      o.ai.ModelName(),
			Version:    models.EnrichmentVersion,
			EnrichedAt: o.now().UTC(),
		},
	}, nil
}

func (o *Orchestrator) complete(ctx context.Context, stage, prompt string, payload map[string]any) (map[string]any, error) {
	resp, err := o.ai.Complete(ctx, prompt, payload)
	if err != nil {
		return nil, &StageError{Stage: stage, Err: err}
	}
	if resp == nil {
		resp = map[string]any{}
	}
	return resp, nil
}
