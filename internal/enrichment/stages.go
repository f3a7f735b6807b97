package enrichment

import (
	"strconv"

	"github.com/maltedev/storefront-scraper/internal/models"
	"github.com/maltedev/storefront-scraper/internal/parser"
)

const (
	StageAttributes     = "attributes"
	StageCategorization = "categorization"
	StageContent        = "content"
)

// Each stage sees only the product fields it needs.
var (
	attributesKeys     = []string{"name", "description", "material", "category"}
	categorizationKeys = []string{"name", "description", "category", "brand", "color"}
	contentKeys        = []string{"name", "description", "brand", "color", "material", "category"}
)

func parseAttributes(resp map[string]any, fields map[string]any) models.ProductAttributes {
	return models.ProductAttributes{
		SleeveType:       str(resp, "sleeve_type"),
		Neckline:         str(resp, "neckline"),
		Fit:              str(resp, "fit"),
		ClosureType:      str(resp, "closure_type"),
		Pattern:          str(resp, "pattern"),
		HeelHeight:       str(resp, "heel_height"),
		ToeStyle:         str(resp, "toe_style"),
		UVProtection:     str(resp, "uv_protection"),
		MaterialParsed:   materialParsed(object(resp, "material_parsed"), fields),
		CareInstructions: optionalList(resp, "care_instructions"),
		KeyFeatures:      list(resp, "key_features"),
	}
}

// materialParsed prefers the model's reading and otherwise derives one from
// the scraped composition.
func materialParsed(obj map[string]any, fields map[string]any) *models.MaterialParsed {
	mp := &models.MaterialParsed{
		Primary:    str(obj, "primary"),
		Secondary:  str(obj, "secondary"),
		Percentage: str(obj, "percentage"),
	}
	if mp.Primary != "" || mp.Secondary != "" || mp.Percentage != "" {
		return mp
	}

	material, _ := fields["material"].(string)
	if material == "" {
		description, _ := fields["description"].(string)
		material = parser.ExtractMaterial(description)
	}

	items := parser.ParseComposition(material)
	if len(items) == 0 {
		return nil
	}

	mp.Primary = items[0].Name
	mp.Percentage = strconv.FormatFloat(items[0].Percent, 'f', -1, 64) + "%"
	if len(items) > 1 {
		mp.Secondary = items[1].Name
	}
	return mp
}

func parseCategorization(resp map[string]any) models.ProductCategorization {
	c := models.ProductCategorization{
		Occasions:               list(resp, "occasions"),
		Seasons:                 list(resp, "seasons"),
		StyleTags:               list(resp, "style_tags"),
		SearchKeywords:          list(resp, "search_keywords"),
		ComplementaryCategories: list(resp, "complementary_categories"),
	}

	if audience := object(resp, "target_audience"); len(audience) > 0 {
		c.TargetAudience = &models.TargetAudience{
			Gender:   str(audience, "gender"),
			AgeGroup: str(audience, "age_group"),
			AgeRange: str(audience, "age_range"),
		}
	}
	return c
}

func parseContent(resp map[string]any) models.ProductContent {
	return models.ProductContent{
		SEOTitle:            str(resp, "seo_title"),
		MetaDescription:     str(resp, "meta_description"),
		ShortDescription:    str(resp, "short_description"),
		MarketingHighlights: list(resp, "marketing_highlights"),
		ImageAltText:        str(resp, "image_alt_text"),
	}
}
