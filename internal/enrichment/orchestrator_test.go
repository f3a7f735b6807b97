package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/storefront-scraper/internal/ai"
	"github.com/maltedev/storefront-scraper/internal/models"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) ModelName() string {
	return "test-model"
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string, payload map[string]any) (map[string]any, error) {
	args := m.Called(ctx, prompt, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func productFields() map[string]any {
	p := &models.Product{
		Name:        "Camisa Polo Azul",
		Description: "Camisa polo em piquet. Algodão 100%",
		Material:    "Algodão 100%",
		Brand:       "Pool",
		Color:       "Azul",
		Category:    "Masculino > Camisas",
		Price:       "R$79.90",
	}
	return p.Fields()
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
}

func TestOrchestrator_Enrich(t *testing.T) {
	ctx := context.Background()
	completer := new(MockCompleter)
	var order []string

	record := func(stage string) func(mock.Arguments) {
		return func(mock.Arguments) { order = append(order, stage) }
	}

	completer.On("Complete", ctx, attributesPrompt, mock.Anything).Run(record(StageAttributes)).Return(map[string]any{
		"sleeve_type":       "short",
		"neckline":          "polo",
		"fit":               nil,
		"material_parsed":   map[string]any{"primary": "algodão", "percentage": "100%"},
		"care_instructions": []any{"lavar à mão", "não usar alvejante"},
		"key_features":      []any{"gola polo", "piquet"},
		"unknown_key":       "ignored",
	}, nil)
	completer.On("Complete", ctx, categorizationPrompt, mock.Anything).Run(record(StageCategorization)).Return(map[string]any{
		"occasions":       []any{"casual", "trabalho"},
		"seasons":         []any{"verão"},
		"style_tags":      "clássico",
		"target_audience": map[string]any{"gender": "male", "age_group": "adult"},
		"search_keywords": []any{"camisa polo", "polo azul"},
	}, nil)
	completer.On("Complete", ctx, contentPrompt, mock.Anything).Run(record(StageContent)).Return(map[string]any{
		"seo_title":            "Camisa Polo Azul Pool",
		"meta_description":     "Camisa polo azul em algodão.",
		"short_description":    "Polo clássica em piquet.",
		"marketing_highlights": []any{"100% algodão", "gola polo", "caimento regular"},
		"image_alt_text":       "Camisa polo azul",
	}, nil)

	o := NewOrchestrator(completer, nil)
	o.now = fixedClock

	id := int64(7)
	e, err := o.Enrich(ctx, productFields(), &id)
	require.NoError(t, err)

	assert.Equal(t, []string{StageAttributes, StageCategorization, StageContent}, order)

	assert.Equal(t, "short", e.Attributes.SleeveType)
	assert.Equal(t, "polo", e.Attributes.Neckline)
	assert.Empty(t, e.Attributes.Fit)
	assert.Equal(t, &models.MaterialParsed{Primary: "algodão", Percentage: "100%"}, e.Attributes.MaterialParsed)
	assert.Equal(t, []string{"lavar à mão", "não usar alvejante"}, e.Attributes.CareInstructions)
	assert.Equal(t, []string{"gola polo", "piquet"}, e.Attributes.KeyFeatures)

	assert.Equal(t, []string{"casual", "trabalho"}, e.Categorization.Occasions)
	assert.Equal(t, []string{"clássico"}, e.Categorization.StyleTags)
	assert.Equal(t, []string{}, e.Categorization.ComplementaryCategories)
	assert.Equal(t, &models.TargetAudience{Gender: "male", AgeGroup: "adult"}, e.Categorization.TargetAudience)

	assert.Equal(t, "Camisa Polo Azul Pool", e.Content.SEOTitle)
	assert.Len(t, e.Content.MarketingHighlights, 3)

	require.NotNil(t, e.Metadata)
	assert.Equal(t, "test-model", e.Metadata.Model)
	assert.Equal(t, "1.0", e.Metadata.Version)
	assert.Equal(t, time.UTC, e.Metadata.EnrichedAt.Location())
	assert.Equal(t, fixedClock().UTC(), e.Metadata.EnrichedAt)
	require.NotNil(t, e.ProductID)
	assert.Equal(t, int64(7), *e.ProductID)

	completer.AssertExpectations(t)
}

func TestOrchestrator_StagePayloads(t *testing.T) {
	ctx := context.Background()
	completer := new(MockCompleter)

	hasKeys := func(keys ...string) func(map[string]any) bool {
		return func(p map[string]any) bool {
			if len(p) != len(keys) {
				return false
			}
			for _, k := range keys {
				if _, ok := p[k]; !ok {
					return false
				}
			}
			return true
		}
	}

	completer.On("Complete", ctx, attributesPrompt,
		mock.MatchedBy(hasKeys("name", "description", "material", "category"))).Return(map[string]any{}, nil)
	completer.On("Complete", ctx, categorizationPrompt,
		mock.MatchedBy(hasKeys("name", "description", "category", "brand", "color"))).Return(map[string]any{}, nil)
	completer.On("Complete", ctx, contentPrompt,
		mock.MatchedBy(hasKeys("name", "description", "brand", "color", "material", "category"))).Return(map[string]any{}, nil)

	e, err := NewOrchestrator(completer, nil).Enrich(ctx, productFields(), nil)
	require.NoError(t, err)
	assert.Nil(t, e.ProductID)

	completer.AssertExpectations(t)
}

func TestOrchestrator_EmptyRepliesStillProduceRecords(t *testing.T) {
	ctx := context.Background()
	completer := new(MockCompleter)
	completer.On("Complete", ctx, mock.Anything, mock.Anything).Return(map[string]any{}, nil)

	e, err := NewOrchestrator(completer, nil).Enrich(ctx, map[string]any{"name": "Sandália"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{}, e.Attributes.KeyFeatures)
	assert.Nil(t, e.Attributes.CareInstructions)
	assert.Nil(t, e.Attributes.MaterialParsed)
	assert.Nil(t, e.Categorization.TargetAudience)
	assert.Equal(t, []string{}, e.Content.MarketingHighlights)
	assert.NotNil(t, e.Metadata)
}

func TestOrchestrator_DerivesMaterialWhenModelOmitsIt(t *testing.T) {
	ctx := context.Background()
	completer := new(MockCompleter)
	completer.On("Complete", ctx, mock.Anything, mock.Anything).Return(map[string]any{"material_parsed": nil}, nil)

	t.Run("from material field", func(t *testing.T) {
		e, err := NewOrchestrator(completer, nil).Enrich(ctx, map[string]any{
			"name":     "Legging",
			"material": "Poliéster 90%; Elastano 10%",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, &models.MaterialParsed{Primary: "Poliéster", Secondary: "Elastano", Percentage: "90%"}, e.Attributes.MaterialParsed)
	})

	t.Run("from description", func(t *testing.T) {
		e, err := NewOrchestrator(completer, nil).Enrich(ctx, map[string]any{
			"name":        "Camisa Polo Azul",
			"description": "Algodão 100%",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, &models.MaterialParsed{Primary: "Algodão", Percentage: "100%"}, e.Attributes.MaterialParsed)
	})
}

func TestOrchestrator_StageFailureAborts(t *testing.T) {
	ctx := context.Background()
	gatewayErr := &ai.GatewayError{Message: "gemini API error", Err: errors.New("503")}

	t.Run("categorization fails, content never called", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", ctx, attributesPrompt, mock.Anything).Return(map[string]any{}, nil)
		completer.On("Complete", ctx, categorizationPrompt, mock.Anything).Return(nil, gatewayErr)

		e, err := NewOrchestrator(completer, nil).Enrich(ctx, productFields(), nil)
		require.Error(t, err)
		assert.Nil(t, e)

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageCategorization, stageErr.Stage)

		var gwErr *ai.GatewayError
		assert.ErrorAs(t, err, &gwErr)

		completer.AssertNotCalled(t, "Complete", ctx, contentPrompt, mock.Anything)
	})

	t.Run("attributes fails first", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", ctx, attributesPrompt, mock.Anything).Return(nil, gatewayErr)

		_, err := NewOrchestrator(completer, nil).Enrich(ctx, productFields(), nil)

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageAttributes, stageErr.Stage)
		completer.AssertNumberOfCalls(t, "Complete", 1)
	})
}
