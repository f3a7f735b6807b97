package storage

import (
	"time"

	"github.com/maltedev/storefront-scraper/internal/models"
)

type productDoc struct {
	ID             int64             `bson:"_id"`
	SKU            *string           `bson:"sku,omitempty"`
	Name           string            `bson:"name"`
	Price          string            `bson:"price,omitempty"`
	OriginalPrice  string            `bson:"original_price,omitempty"`
	Description    string            `bson:"description,omitempty"`
	ImageURL       string            `bson:"image_url,omitempty"`
	URL            string            `bson:"url,omitempty"`
	Brand          string            `bson:"brand,omitempty"`
	Category       string            `bson:"category,omitempty"`
	Color          string            `bson:"color,omitempty"`
	Material       string            `bson:"material,omitempty"`
	Images         []string          `bson:"images"`
	Sizes          []string          `bson:"sizes"`
	Specifications map[string]string `bson:"specifications"`
	CreatedAt      time.Time         `bson:"created_at"`
	UpdatedAt      time.Time         `bson:"updated_at"`
}

// newProductDoc leaves SKU unset when empty so the partial unique index
// ignores products without one.
func newProductDoc(p *models.Product) productDoc {
	doc := productDoc{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		URL:            p.URL,
		Brand:          p.Brand,
		Category:       p.Category,
		Color:          p.Color,
		Material:       p.Material,
		Images:         nonNil(p.Images),
		Sizes:          nonNil(p.Sizes),
		Specifications: p.Specifications,
	}
	if doc.Specifications == nil {
		doc.Specifications = map[string]string{}
	}
	if p.SKU != "" {
		sku := p.SKU
		doc.SKU = &sku
	}
	return doc
}

func (d *productDoc) model() *models.Product {
	p := &models.Product{
		ID:             d.ID,
		Name:           d.Name,
		Price:          d.Price,
		OriginalPrice:  d.OriginalPrice,
		Description:    d.Description,
		ImageURL:       d.ImageURL,
		URL:            d.URL,
		Brand:          d.Brand,
		Category:       d.Category,
		Color:          d.Color,
		Material:       d.Material,
		Images:         nonNil(d.Images),
		Sizes:          nonNil(d.Sizes),
		Specifications: d.Specifications,
	}
	if d.SKU != nil {
		p.SKU = *d.SKU
	}
	if p.Specifications == nil {
		p.Specifications = map[string]string{}
	}
	return p
}

type enrichmentDoc struct {
	ID             int64             `bson:"_id"`
	ProductID      int64             `bson:"product_id"`
	Attributes     attributesDoc     `bson:"attributes"`
	Categorization categorizationDoc `bson:"categorization"`
	Content        contentDoc        `bson:"content"`
	Model          string            `bson:"model"`
	Version        string            `bson:"version"`
	EnrichedAt     time.Time         `bson:"enriched_at"`
}

type attributesDoc struct {
	SleeveType       string                 `bson:"sleeve_type,omitempty"`
	Neckline         string                 `bson:"neckline,omitempty"`
	Fit              string                 `bson:"fit,omitempty"`
	ClosureType      string                 `bson:"closure_type,omitempty"`
	Pattern          string                 `bson:"pattern,omitempty"`
	HeelHeight       string                 `bson:"heel_height,omitempty"`
	ToeStyle         string                 `bson:"toe_style,omitempty"`
	UVProtection     string                 `bson:"uv_protection,omitempty"`
	MaterialParsed   *models.MaterialParsed `bson:"material_parsed,omitempty"`
	CareInstructions []string               `bson:"care_instructions,omitempty"`
	KeyFeatures      []string               `bson:"key_features"`
}

type categorizationDoc struct {
	Occasions               []string               `bson:"occasions"`
	Seasons                 []string               `bson:"seasons"`
	StyleTags               []string               `bson:"style_tags"`
	TargetAudience          *models.TargetAudience `bson:"target_audience,omitempty"`
	SearchKeywords          []string               `bson:"search_keywords"`
	ComplementaryCategories []string               `bson:"complementary_categories"`
}

type contentDoc struct {
	SEOTitle            string   `bson:"seo_title,omitempty"`
	MetaDescription     string   `bson:"meta_description,omitempty"`
	ShortDescription    string   `bson:"short_description,omitempty"`
	MarketingHighlights []string `bson:"marketing_highlights"`
	ImageAltText        string   `bson:"image_alt_text,omitempty"`
}

func newEnrichmentDoc(e *models.ProductEnrichment) enrichmentDoc {
	a, c, t := e.Attributes, e.Categorization, e.Content
	doc := enrichmentDoc{
		ID:        e.ID,
		ProductID: *e.ProductID,
		Attributes: attributesDoc{
			SleeveType:       a.SleeveType,
			Neckline:         a.Neckline,
			Fit:              a.Fit,
			ClosureType:      a.ClosureType,
			Pattern:          a.Pattern,
			HeelHeight:       a.HeelHeight,
			ToeStyle:         a.ToeStyle,
			UVProtection:     a.UVProtection,
			MaterialParsed:   a.MaterialParsed,
			CareInstructions: a.CareInstructions,
			KeyFeatures:      nonNil(a.KeyFeatures),
		},
		Categorization: categorizationDoc{
			Occasions:               nonNil(c.Occasions),
			Seasons:                 nonNil(c.Seasons),
			StyleTags:               nonNil(c.StyleTags),
			TargetAudience:          c.TargetAudience,
			SearchKeywords:          nonNil(c.SearchKeywords),
			ComplementaryCategories: nonNil(c.ComplementaryCategories),
		},
		Content: contentDoc{
			SEOTitle:            t.SEOTitle,
			MetaDescription:     t.MetaDescription,
			ShortDescription:    t.ShortDescription,
			MarketingHighlights: nonNil(t.MarketingHighlights),
			ImageAltText:        t.ImageAltText,
		},
		EnrichedAt: time.Now().UTC(),
	}
	if m := e.Metadata; m != nil {
		doc.Model = m.Model
		doc.Version = m.Version
		if !m.EnrichedAt.IsZero() {
			doc.EnrichedAt = m.EnrichedAt.UTC()
		}
	}
	return doc
}

func (d *enrichmentDoc) model() *models.ProductEnrichment {
	productID := d.ProductID
	a, c, t := d.Attributes, d.Categorization, d.Content
	return &models.ProductEnrichment{
		ID:        d.ID,
		ProductID: &productID,
		Attributes: models.ProductAttributes{
			SleeveType:       a.SleeveType,
			Neckline:         a.Neckline,
			Fit:              a.Fit,
			ClosureType:      a.ClosureType,
			Pattern:          a.Pattern,
			HeelHeight:       a.HeelHeight,
			ToeStyle:         a.ToeStyle,
			UVProtection:     a.UVProtection,
			MaterialParsed:   a.MaterialParsed,
			CareInstructions: a.CareInstructions,
			KeyFeatures:      nonNil(a.KeyFeatures),
		},
		Categorization: models.ProductCategorization{
			Occasions:               nonNil(c.Occasions),
			Seasons:                 nonNil(c.Seasons),
			StyleTags:               nonNil(c.StyleTags),
			TargetAudience:          c.TargetAudience,
			SearchKeywords:          nonNil(c.SearchKeywords),
			ComplementaryCategories: nonNil(c.ComplementaryCategories),
		},
		Content: models.ProductContent{
			SEOTitle:            t.SEOTitle,
			MetaDescription:     t.MetaDescription,
			ShortDescription:    t.ShortDescription,
			MarketingHighlights: nonNil(t.MarketingHighlights),
			ImageAltText:        t.ImageAltText,
		},
		Metadata: &models.EnrichmentMetadata{
			Model:      d.Model,
			Version:    d.Version,
			EnrichedAt: d.EnrichedAt.UTC(),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
