// Package export writes the product catalog as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/maltedev/storefront-scraper/internal/models"
)

const (
	ProductsSheet    = "Products"
	EnrichmentsSheet = "Enrichments"
)

var productHeader = []any{
	"ID", "SKU", "Name", "Price", "Original Price", "Discount", "Brand", "Category",
	"Color", "Material", "Sizes", "URL", "Image URL", "Images", "Description",
}

var enrichmentHeader = []any{
	"Product ID", "SKU", "Fit", "Neckline", "Sleeve Type", "Pattern", "Primary Material",
	"Occasions", "Seasons", "Style Tags", "Gender", "Age Group", "Search Keywords",
	"SEO Title", "Meta Description", "Short Description", "Model", "Enriched At",
}

// WriteProducts writes one row per product and, for products carrying
// enrichment data, one row on the enrichment sheet.
func WriteProducts(w io.Writer, products []*models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(EnrichmentsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, ProductsSheet, 1, productHeader); err != nil {
		return err
	}
	if err := writeRow(f, EnrichmentsSheet, 1, enrichmentHeader); err != nil {
		return err
	}
	for sheet, cols := range map[string]int{ProductsSheet: len(productHeader), EnrichmentsSheet: len(enrichmentHeader)} {
		last, _ := excelize.CoordinatesToCellName(cols, 1)
		if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	enrichedRow := 2
	for i, p := range products {
		if err := writeRow(f, ProductsSheet, i+2, productRow(p)); err != nil {
			return err
		}
		if p.EnrichedData == nil {
			continue
		}
		if err := writeRow(f, EnrichmentsSheet, enrichedRow, enrichmentRow(p)); err != nil {
			return err
		}
		enrichedRow++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func productRow(p *models.Product) []any {
	discount := "no"
	if p.HasDiscount() {
		discount = "yes"
	}
	return []any{
		p.ID, p.SKU, p.Name, p.Price, p.OriginalPrice, discount, p.Brand, p.Category,
		p.Color, p.Material, strings.Join(p.Sizes, ", "), p.URL, p.ImageURL,
		strings.Join(p.Images, "\n"), p.Description,
	}
}

func enrichmentRow(p *models.Product) []any {
	e := p.EnrichedData
	var primary, gender, ageGroup, model, enrichedAt string
	if mp := e.Attributes.MaterialParsed; mp != nil {
		primary = mp.Primary
	}
	if ta := e.Categorization.TargetAudience; ta != nil {
		gender, ageGroup = ta.Gender, ta.AgeGroup
	}
	if m := e.Metadata; m != nil {
		model = m.Model
		if !m.EnrichedAt.IsZero() {
			enrichedAt = m.EnrichedAt.UTC().Format("2006-01-02 15:04:05")
		}
	}
	return []any{
		p.ID, p.SKU, e.Attributes.Fit, e.Attributes.Neckline, e.Attributes.SleeveType,
		e.Attributes.Pattern, primary,
		strings.Join(e.Categorization.Occasions, ", "),
		strings.Join(e.Categorization.Seasons, ", "),
		strings.Join(e.Categorization.StyleTags, ", "),
		gender, ageGroup,
		strings.Join(e.Categorization.SearchKeywords, ", "),
		e.Content.SEOTitle, e.Content.MetaDescription, e.Content.ShortDescription,
		model, enrichedAt,
	}
}
