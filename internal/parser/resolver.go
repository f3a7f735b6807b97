package parser

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/maltedev/storefront-scraper/internal/models"
)

const (
	currencyPrefix   = "R$"
	colorSeparator   = " - "
	categorySep      = " > "
	imageSelector    = "img[src*='static.riachuelo']"
	imageMarker      = "portrait"
	breadcrumbSelect = "nav[aria-label='breadcrumb'] a"
)

var (
	// NameSelectors are tried in order when structured data carries no name.
	NameSelectors = []string{"h1", "[data-testid='product-name']", "[class*='ProductName']"}

	skuURLPattern = regexp.MustCompile(`-(\d{8})_`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	nbspPattern   = regexp.MustCompile(`&nbsp;|&#160;`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Resolver assembles a Product from structured data, falling back to DOM
// queries and then to derived values, field by field.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger.With("component", "field_resolver")}
}

// Resolve never fails: a field nobody can provide stays empty. data may be
// nil when the page has no product JSON-LD.
func (r *Resolver) Resolve(data map[string]any, dom DOM, currentURL string) *models.Product {
	name := r.name(data, dom)
	description := cleanDescription(data)
	images := r.images(data, dom)

	product := &models.Product{
		Name:           name,
		Price:          price(data),
		OriginalPrice:  originalPrice(data),
		Description:    description,
		Images:         images,
		URL:            currentURL,
		SKU:            sku(data, currentURL),
		Brand:          brand(data),
		Category:       r.category(data, dom),
		Color:          color(data, name),
		Sizes:          sizes(data),
		Material:       ExtractMaterial(description),
		Specifications: map[string]string{},
	}
	if len(images) > 0 {
		product.ImageURL = images[0]
	}
	if product.Name == "" {
		product.Name = models.UnknownProductName
	}

	return product
}

func (r *Resolver) name(data map[string]any, dom DOM) string {
	if s, ok := scalar(data["name"]); ok {
		return s
	}

	for _, selector := range NameSelectors {
		el := r.queryOne(dom, selector)
		if el == nil {
			continue
		}
		if text := strings.TrimSpace(r.text(dom, el)); text != "" {
			return text
		}
	}
	return ""
}

func price(data map[string]any) string {
	switch offers := data["offers"].(type) {
	case map[string]any:
		if s, ok := scalar(offers["price"]); ok {
			return currencyPrefix + s
		}
		if s, ok := scalar(offers["lowPrice"]); ok {
			return currencyPrefix + s
		}
	case []any:
		if len(offers) > 0 {
			if first, ok := offers[0].(map[string]any); ok {
				if s, ok := scalar(first["price"]); ok {
					return currencyPrefix + s
				}
			}
		}
	}

	variants, _ := data["hasVariant"].([]any)
	if len(variants) == 0 {
		return ""
	}
	first, _ := variants[0].(map[string]any)
	offers, _ := first["offers"].(map[string]any)
	if s, ok := scalar(offers["price"]); ok {
		return currencyPrefix + s
	}
	return ""
}

// originalPrice only reports highPrice when it differs from lowPrice.
func originalPrice(data map[string]any) string {
	offers, ok := data["offers"].(map[string]any)
	if !ok {
		return ""
	}
	high, ok := scalar(offers["highPrice"])
	if !ok {
		return ""
	}
	low, _ := scalar(offers["lowPrice"])
	if high == low {
		return ""
	}
	return currencyPrefix + high
}

func sku(data map[string]any, currentURL string) string {
	if s, ok := scalar(data["sku"]); ok {
		return s
	}
	if !strings.Contains(currentURL, "_") {
		return ""
	}
	if m := skuURLPattern.FindStringSubmatch(currentURL); m != nil {
		return m[1]
	}
	return ""
}

func brand(data map[string]any) string {
	switch b := data["brand"].(type) {
	case map[string]any:
		s, _ := b["name"].(string)
		return s
	case string:
		return b
	}
	return ""
}

func cleanDescription(data map[string]any) string {
	desc, _ := data["description"].(string)
	if desc == "" {
		return ""
	}
	desc = tagPattern.ReplaceAllString(desc, " ")
	desc = nbspPattern.ReplaceAllString(desc, " ")
	desc = spacePattern.ReplaceAllString(desc, " ")
	return strings.TrimSpace(desc)
}

func (r *Resolver) images(data map[string]any, dom DOM) []string {
	var images []string
	switch img := data["image"].(type) {
	case []any:
		for _, item := range img {
			if s, ok := item.(string); ok && s != "" {
				images = append(images, s)
			}
		}
	case string:
		if img != "" {
			images = []string{img}
		}
	}
	if len(images) > 0 {
		return images
	}

	seen := make(map[string]bool)
	for _, el := range r.queryAll(dom, imageSelector) {
		src, ok, err := dom.Attribute(el, "src")
		if err != nil {
			r.logger.Debug("failed to read image src", "error", err)
			continue
		}
		if !ok || src == "" || seen[src] || !strings.Contains(src, imageMarker) {
			continue
		}
		seen[src] = true
		images = append(images, src)
	}
	return images
}

// sizes orders numerically when every size is an integer, otherwise
// lexicographically.
func sizes(data map[string]any) []string {
	variants, ok := data["hasVariant"].([]any)
	if !ok {
		return nil
	}

	var result []string
	seen := make(map[string]bool)
	for _, v := range variants {
		variant, ok := v.(map[string]any)
		if !ok {
			continue
		}
		size, ok := scalar(variant["size"])
		if !ok || seen[size] {
			continue
		}
		seen[size] = true
		result = append(result, size)
	}

	numeric := make(map[string]int, len(result))
	for _, s := range result {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			sort.Strings(result)
			return result
		}
		numeric[s] = n
	}
	sort.SliceStable(result, func(i, j int) bool {
		return numeric[result[i]] < numeric[result[j]]
	})
	return result
}

func color(data map[string]any, name string) string {
	if s, ok := scalar(data["color"]); ok {
		return s
	}
	if idx := strings.LastIndex(name, colorSeparator); idx >= 0 {
		return strings.TrimSpace(name[idx+len(colorSeparator):])
	}
	return ""
}

func (r *Resolver) category(data map[string]any, dom DOM) string {
	if s, ok := scalar(data["category"]); ok {
		return s
	}

	crumbs := r.queryAll(dom, breadcrumbSelect)
	if len(crumbs) < 2 {
		return ""
	}

	var parts []string
	for _, el := range crumbs[1:] {
		if text := strings.TrimSpace(r.text(dom, el)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, categorySep)
}

func (r *Resolver) queryOne(dom DOM, selector string) Element {
	if dom == nil {
		return nil
	}
	el, err := dom.QueryOne(selector)
	if err != nil {
		r.logger.Debug("selector query failed", "selector", selector, "error", err)
		return nil
	}
	return el
}

func (r *Resolver) queryAll(dom DOM, selector string) []Element {
	if dom == nil {
		return nil
	}
	els, err := dom.QueryAll(selector)
	if err != nil {
		r.logger.Debug("selector query failed", "selector", selector, "error", err)
		return nil
	}
	return els
}

func (r *Resolver) text(dom DOM, el Element) string {
	text, err := dom.Text(el)
	if err != nil {
		r.logger.Debug("failed to read element text", "error", err)
		return ""
	}
	return text
}

// scalar renders a JSON-LD string or number, treating empty strings and zero
// numbers as absent.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return "", false
		}
		return x.String(), true
	case float64:
		if x == 0 {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return "", false
}
