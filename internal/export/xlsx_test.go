package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/maltedev/storefront-scraper/internal/models"
)

func TestWriteProducts(t *testing.T) {
	enriched := &models.Product{
		ID:            1,
		Name:          "Camisa Polo Masculina - Azul",
		SKU:           "15247848",
		Price:         "R$79.90",
		OriginalPrice: "R$99.90",
		Sizes:         []string{"P", "M", "G"},
		EnrichedData: &models.ProductEnrichment{
			Attributes: models.ProductAttributes{
				Fit:            "regular",
				MaterialParsed: &models.MaterialParsed{Primary: "Algodão"},
			},
			Categorization: models.ProductCategorization{
				Occasions:      []string{"casual", "trabalho"},
				TargetAudience: &models.TargetAudience{Gender: "masculino"},
			},
			Content: models.ProductContent{SEOTitle: "Camisa Polo Azul"},
			Metadata: &models.EnrichmentMetadata{
				Model:      "gemini-1.5-flash",
				EnrichedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
			},
		},
	}
	plain := &models.Product{ID: 2, Name: "Vestido Midi", Price: "R$129.90"}

	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, []*models.Product{enriched, plain}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ProductsSheet, EnrichmentsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ProductsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][2])
	assert.Equal(t, "15247848", rows[1][1])
	assert.Equal(t, "yes", rows[1][5])
	assert.Equal(t, "P, M, G", rows[1][10])
	assert.Equal(t, "Vestido Midi", rows[2][2])
	assert.Equal(t, "no", rows[2][5])

	rows, err = f.GetRows(EnrichmentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2, "only enriched products get a row")
	assert.Equal(t, "regular", rows[1][2])
	assert.Equal(t, "Algodão", rows[1][6])
	assert.Equal(t, "casual, trabalho", rows[1][7])
	assert.Equal(t, "masculino", rows[1][10])
	assert.Equal(t, "2024-05-01 10:30:00", rows[1][17])
}

func TestWriteProducts_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ProductsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
