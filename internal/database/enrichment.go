package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/storefront-scraper/internal/models"
)

var ErrMissingProductID = errors.New("enrichment has no product id")

const enrichmentColumns = `id, product_id, sleeve_type, neckline, fit, closure_type, pattern,
	heel_height, toe_style, uv_protection, material_parsed, care_instructions, key_features,
	occasions, seasons, style_tags, target_gender, target_age_group, target_age_range,
	search_keywords, complementary_categories, seo_title, meta_description, short_description,
	marketing_highlights, image_alt_text, model, version, enriched_at`

// EnrichmentRepository appends enrichments; a product keeps its full history.
type EnrichmentRepository struct {
	db     *DB
	outbox *OutboxRepository
}

func NewEnrichmentRepository(db *DB) *EnrichmentRepository {
	return &EnrichmentRepository{db: db, outbox: NewOutboxRepository(db)}
}

// Save inserts a new enrichment row and a PRODUCT_ENRICHED event.
func (r *EnrichmentRepository) Save(ctx context.Context, e *models.ProductEnrichment) (*models.ProductEnrichment, error) {
	if e.ProductID == nil {
		return nil, ErrMissingProductID
	}

	args, err := enrichmentArgs(e)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO product_enrichments (
			product_id, sleeve_type, neckline, fit, closure_type, pattern,
			heel_height, toe_style, uv_protection, material_parsed, care_instructions, key_features,
			occasions, seasons, style_tags, target_gender, target_age_group, target_age_range,
			search_keywords, complementary_categories, seo_title, meta_description, short_description,
			marketing_highlights, image_alt_text, model, version, enriched_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		)
		RETURNING id`

	saved := *e
	err = r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, args...).Scan(&saved.ID); err != nil {
			return fmt.Errorf("failed to insert enrichment: %w", err)
		}

		event, err := NewProductEvent(EventProductEnriched, *e.ProductID, &saved)
		if err != nil {
			return err
		}
		return r.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// FindByProductID returns the most recent enrichment of a product.
func (r *EnrichmentRepository) FindByProductID(ctx context.Context, productID int64) (*models.ProductEnrichment, error) {
	query := `SELECT ` + enrichmentColumns + `
		FROM product_enrichments
		WHERE product_id = $1
		ORDER BY enriched_at DESC, id DESC
		LIMIT 1`

	var row enrichmentRow
	err := r.db.pool.QueryRow(ctx, query, productID).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("enrichment for product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrichment: %w", err)
	}

	return row.toEnrichment()
}

func enrichmentArgs(e *models.ProductEnrichment) ([]any, error) {
	var materialParsed, careInstructions []byte
	var err error
	if e.Attributes.MaterialParsed != nil {
		if materialParsed, err = json.Marshal(e.Attributes.MaterialParsed); err != nil {
			return nil, fmt.Errorf("failed to marshal material_parsed: %w", err)
		}
	}
	if e.Attributes.CareInstructions != nil {
		if careInstructions, err = json.Marshal(e.Attributes.CareInstructions); err != nil {
			return nil, fmt.Errorf("failed to marshal care_instructions: %w", err)
		}
	}

	lists := [][]string{
		e.Attributes.KeyFeatures,
		e.Categorization.Occasions,
		e.Categorization.Seasons,
		e.Categorization.StyleTags,
		e.Categorization.SearchKeywords,
		e.Categorization.ComplementaryCategories,
		e.Content.MarketingHighlights,
	}
	encoded := make([][]byte, len(lists))
	for i, l := range lists {
		if encoded[i], err = marshalJSON(l, "[]"); err != nil {
			return nil, fmt.Errorf("failed to marshal enrichment list: %w", err)
		}
	}

	var gender, ageGroup, ageRange *string
	if ta := e.Categorization.TargetAudience; ta != nil {
		gender, ageGroup, ageRange = &ta.Gender, &ta.AgeGroup, &ta.AgeRange
	}

	var model, version *string
	enrichedAt := time.Now().UTC()
	if m := e.Metadata; m != nil {
		model, version = &m.Model, &m.Version
		if !m.EnrichedAt.IsZero() {
			enrichedAt = m.EnrichedAt
		}
	}

	a := e.Attributes
	c := e.Content
	return []any{
		*e.ProductID, a.SleeveType, a.Neckline, a.Fit, a.ClosureType, a.Pattern,
		a.HeelHeight, a.ToeStyle, a.UVProtection, materialParsed, careInstructions, encoded[0],
		encoded[1], encoded[2], encoded[3], gender, ageGroup, ageRange,
		encoded[4], encoded[5], c.SEOTitle, c.MetaDescription, c.ShortDescription,
		encoded[6], c.ImageAltText, model, version, enrichedAt,
	}, nil
}

// enrichmentRow scans enrichment columns. Every column is nullable so the
// same row also serves LEFT JOINs where no enrichment exists.
type enrichmentRow struct {
	id, productID *int64

	sleeveType, neckline, fit, closureType, pattern *string
	heelHeight, toeStyle, uvProtection              *string
	materialParsed, careInstructions, keyFeatures   []byte

	occasions, seasons, styleTags           []byte
	gender, ageGroup, ageRange              *string
	searchKeywords, complementaryCategories []byte
	seoTitle, metaDescription, shortDesc    *string
	marketingHighlights                     []byte
	imageAltText, model, version            *string
	enrichedAt                              *time.Time
}

func (r *enrichmentRow) dest() []any {
	return []any{
		&r.id, &r.productID, &r.sleeveType, &r.neckline, &r.fit, &r.closureType, &r.pattern,
		&r.heelHeight, &r.toeStyle, &r.uvProtection, &r.materialParsed, &r.careInstructions, &r.keyFeatures,
		&r.occasions, &r.seasons, &r.styleTags, &r.gender, &r.ageGroup, &r.ageRange,
		&r.searchKeywords, &r.complementaryCategories, &r.seoTitle, &r.metaDescription, &r.shortDesc,
		&r.marketingHighlights, &r.imageAltText, &r.model, &r.version, &r.enrichedAt,
	}
}

// toEnrichment returns nil when the row holds no enrichment.
func (r *enrichmentRow) toEnrichment() (*models.ProductEnrichment, error) {
	if r.id == nil {
		return nil, nil
	}

	e := &models.ProductEnrichment{
		ID:        *r.id,
		ProductID: r.productID,
		Attributes: models.ProductAttributes{
			SleeveType:   deref(r.sleeveType),
			Neckline:     deref(r.neckline),
			Fit:          deref(r.fit),
			ClosureType:  deref(r.closureType),
			Pattern:      deref(r.pattern),
			HeelHeight:   deref(r.heelHeight),
			ToeStyle:     deref(r.toeStyle),
			UVProtection: deref(r.uvProtection),
		},
		Content: models.ProductContent{
			SEOTitle:         deref(r.seoTitle),
			MetaDescription:  deref(r.metaDescription),
			ShortDescription: deref(r.shortDesc),
			ImageAltText:     deref(r.imageAltText),
		},
		Metadata: &models.EnrichmentMetadata{
			Model:   deref(r.model),
			Version: deref(r.version),
		},
	}
	if r.enrichedAt != nil {
		e.Metadata.EnrichedAt = r.enrichedAt.UTC()
	}

	if r.gender != nil || r.ageGroup != nil || r.ageRange != nil {
		e.Categorization.TargetAudience = &models.TargetAudience{
			Gender:   deref(r.gender),
			AgeGroup: deref(r.ageGroup),
			AgeRange: deref(r.ageRange),
		}
	}

	if len(r.materialParsed) > 0 {
		e.Attributes.MaterialParsed = &models.MaterialParsed{}
		if err := json.Unmarshal(r.materialParsed, e.Attributes.MaterialParsed); err != nil {
			return nil, fmt.Errorf("failed to decode material_parsed: %w", err)
		}
	}
	if err := unmarshalJSON(r.careInstructions, &e.Attributes.CareInstructions); err != nil {
		return nil, fmt.Errorf("failed to decode care_instructions: %w", err)
	}

	lists := []struct {
		raw []byte
		dst *[]string
	}{
		{r.keyFeatures, &e.Attributes.KeyFeatures},
		{r.occasions, &e.Categorization.Occasions},
		{r.seasons, &e.Categorization.Seasons},
		{r.styleTags, &e.Categorization.StyleTags},
		{r.searchKeywords, &e.Categorization.SearchKeywords},
		{r.complementaryCategories, &e.Categorization.ComplementaryCategories},
		{r.marketingHighlights, &e.Content.MarketingHighlights},
	}
	for _, l := range lists {
		if err := unmarshalJSON(l.raw, l.dst); err != nil {
			return nil, fmt.Errorf("failed to decode enrichment list: %w", err)
		}
		if *l.dst == nil {
			*l.dst = []string{}
		}
	}

	return e, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
