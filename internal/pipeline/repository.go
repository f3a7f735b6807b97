package pipeline

import (
	"context"

	"github.com/maltedev/storefront-scraper/internal/models"
)

// ProductRepository persists scraped products keyed by SKU.
type ProductRepository interface {
	// Save upserts by SKU and returns the product with its id set.
	Save(ctx context.Context, p *models.Product) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindAll(ctx context.Context) ([]*models.Product, error)
}

// EnrichmentRepository stores enrichments append-only.
type EnrichmentRepository interface {
	Save(ctx context.Context, e *models.ProductEnrichment) (*models.ProductEnrichment, error)
	// FindByProductID returns the most recent enrichment. A product without
	// enrichments yields an error wrapping models.ErrNotFound.
	FindByProductID(ctx context.Context, productID int64) (*models.ProductEnrichment, error)
}
