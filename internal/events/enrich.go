package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/maltedev/storefront-scraper/internal/pipeline"
)

// Enricher is satisfied by *pipeline.EnrichPipeline.
type Enricher interface {
	Enrich(ctx context.Context, in pipeline.EnrichInput) pipeline.EnrichResult
}

// EnrichScraped returns a handler that enriches the product carried by a
// PRODUCT_SCRAPED event. Only gateway failures are returned, so the entry
// stays pending and is redelivered; other failures are logged.
func EnrichScraped(enricher Enricher, logger *slog.Logger) HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "enrich_handler")

	return func(ctx context.Context, event Event) error {
		var fields map[string]any
		if err := json.Unmarshal(event.Payload, &fields); err != nil {
			logger.Error("dropping event with unreadable product payload",
				"aggregate_id", event.AggregateID, "error", err)
			return nil
		}

		in := pipeline.EnrichInput{Fields: fields}
		if id, err := strconv.ParseInt(event.AggregateID, 10, 64); err == nil && id > 0 {
			in.ProductID = &id
		} else {
			logger.Warn("event has no numeric product id, enrichment will not be stored",
				"aggregate_id", event.AggregateID)
		}

		switch r := enricher.Enrich(ctx, in).(type) {
		case *pipeline.EnrichSuccess:
			logger.Info("product enriched", "aggregate_id", event.AggregateID, "sku", fields["sku"])
			return nil
		case *pipeline.Failure:
			if r.Kind == pipeline.KindAIGateway {
				return r
			}
			logger.Error("enrichment failed", "aggregate_id", event.AggregateID, "error_type", r.Kind, "message", r.Message)
		}
		return nil
	}
}
