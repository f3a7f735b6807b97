package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/maltedev/storefront-scraper/internal/models"
)

var (
	// "Poliéster 90%; Elastano 10%"
	compositionPattern = regexp.MustCompile(`([A-Za-záéíóúãõâêîôûç\s]+\d+%(?:;\s*[A-Za-záéíóúãõâêîôûç\s]+\d+%)*)`)
	componentPattern   = regexp.MustCompile(`^(.*?)\s*(\d+(?:[,.]\d+)?)\s*%$`)
)

// ExtractMaterial returns the first fabric composition found in a product
// description, or "" when none is present.
func ExtractMaterial(description string) string {
	if description == "" {
		return ""
	}
	match := compositionPattern.FindString(description)
	return strings.TrimSpace(match)
}

// ParseComposition splits a composition such as "Poliéster 90%; Elastano 10%"
// into its components, in order.
func ParseComposition(material string) []models.MaterialItem {
	var items []models.MaterialItem
	for _, part := range strings.Split(material, ";") {
		part = strings.TrimSpace(part)
		m := componentPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		percent, err := strconv.ParseFloat(strings.Replace(m[2], ",", ".", 1), 64)
		if err != nil {
			continue
		}
		items = append(items, models.MaterialItem{Name: name, Percent: percent})
	}
	return items
}
