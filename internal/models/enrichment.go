package models

import "time"

// EnrichmentVersion is stamped on every enrichment produced by this build.
const EnrichmentVersion = "1.0"

type MaterialParsed struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Percentage string `json:"percentage,omitempty"`
}

type ProductAttributes struct {
	SleeveType       string          `json:"sleeve_type,omitempty"`
	Neckline         string          `json:"neckline,omitempty"`
	Fit              string          `json:"fit,omitempty"`
	ClosureType      string          `json:"closure_type,omitempty"`
	Pattern          string          `json:"pattern,omitempty"`
	HeelHeight       string          `json:"heel_height,omitempty"`
	ToeStyle         string          `json:"toe_style,omitempty"`
	UVProtection     string          `json:"uv_protection,omitempty"`
	MaterialParsed   *MaterialParsed `json:"material_parsed,omitempty"`
	CareInstructions []string        `json:"care_instructions,omitempty"`
	KeyFeatures      []string        `json:"key_features"`
}

// TargetAudience values are open sets as returned by the model
// (e.g. gender "feminino", age group "adulto").
type TargetAudience struct {
	Gender   string `json:"gender,omitempty"`
	AgeGroup string `json:"age_group,omitempty"`
	AgeRange string `json:"age_range,omitempty"`
}

type ProductCategorization struct {
	Occasions               []string        `json:"occasions"`
	Seasons                 []string        `json:"seasons"`
	StyleTags               []string        `json:"style_tags"`
	TargetAudience          *TargetAudience `json:"target_audience,omitempty"`
	SearchKeywords          []string        `json:"search_keywords"`
	ComplementaryCategories []string        `json:"complementary_categories"`
}

type ProductContent struct {
	SEOTitle            string   `json:"seo_title,omitempty"`
	MetaDescription     string   `json:"meta_description,omitempty"`
	ShortDescription    string   `json:"short_description,omitempty"`
	MarketingHighlights []string `json:"marketing_highlights"`
	ImageAltText        string   `json:"image_alt_text,omitempty"`
}

type EnrichmentMetadata struct {
	Model      string    `json:"model"`
	Version    string    `json:"version"`
	EnrichedAt time.Time `json:"enriched_at"`
}

// ProductEnrichment is the combined output of the three enrichment stages.
// It refers to its product by id only.
type ProductEnrichment struct {
	ID             int64                 `json:"id,omitempty"`
	ProductID      *int64                `json:"product_id,omitempty"`
	Attributes     ProductAttributes     `json:"attributes"`
	Categorization ProductCategorization `json:"categorization"`
	Content        ProductContent        `json:"content"`
	Metadata       *EnrichmentMetadata   `json:"metadata,omitempty"`
}
