package models

// UnknownProductName is used when neither structured data nor the page DOM
// yields a product name.
const UnknownProductName = "Unknown Product"

// Product is a scraped storefront product. Optional text fields use the empty
// string for "absent".
type Product struct {
	ID             int64              `json:"id,omitempty"`
	Name           string             `json:"name"`
	Price          string             `json:"price,omitempty"`
	OriginalPrice  string             `json:"original_price,omitempty"`
	Description    string             `json:"description,omitempty"`
	ImageURL       string             `json:"image_url,omitempty"`
	Images         []string           `json:"images"`
	URL            string             `json:"url,omitempty"`
	SKU            string             `json:"sku,omitempty"`
	Brand          string             `json:"brand,omitempty"`
	Category       string             `json:"category,omitempty"`
	Color          string             `json:"color,omitempty"`
	Sizes          []string           `json:"sizes"`
	Material       string             `json:"material,omitempty"`
	Specifications map[string]string  `json:"specifications"`
	EnrichedData   *ProductEnrichment `json:"enriched_data,omitempty"`
}

// HasDiscount reports whether an original price is known and differs from
// the current price.
func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != "" && p.OriginalPrice != p.Price
}

func (p *Product) SetID(id int64) {
	p.ID = id
}

func (p *Product) SetEnrichedData(e *ProductEnrichment) {
	p.EnrichedData = e
}

// Fields returns the keyed view of the product consumed by enrichment.
// Absent optional values map to nil.
func (p *Product) Fields() map[string]any {
	fields := map[string]any{
		"name":           p.Name,
		"price":          optional(p.Price),
		"original_price": optional(p.OriginalPrice),
		"description":    optional(p.Description),
		"image_url":      optional(p.ImageURL),
		"images":         p.Images,
		"url":            optional(p.URL),
		"sku":            optional(p.SKU),
		"brand":          optional(p.Brand),
		"category":       optional(p.Category),
		"color":          optional(p.Color),
		"sizes":          p.Sizes,
		"material":       optional(p.Material),
		"specifications": p.Specifications,
		"has_discount":   p.HasDiscount(),
	}
	if p.ID != 0 {
		fields["id"] = p.ID
	}
	return fields
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// MaterialItem is one component of a fabric composition, e.g. "Elastano 10%".
type MaterialItem struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}
