package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maltedev/storefront-scraper/internal/models"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) PlatformName() string {
	return "Riachuelo"
}

func (m *MockGateway) NavigateToSearch(query string) (string, error) {
	args := m.Called(query)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) FindProductLink(query string) (string, error) {
	args := m.Called(query)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) NavigateToProduct(ctx context.Context, url string, saveDebugFiles bool) error {
	return m.Called(ctx, url, saveDebugFiles).Error(0)
}

func (m *MockGateway) ExtractProductDetails() (*models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, p *models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

type MockEnrichmentRepository struct {
	mock.Mock
}

func (m *MockEnrichmentRepository) Save(ctx context.Context, e *models.ProductEnrichment) (*models.ProductEnrichment, error) {
	args := m.Called(ctx, e)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(context.Context, *models.ProductEnrichment) *models.ProductEnrichment:
		return v(ctx, e), args.Error(1)
	default:
		return v.(*models.ProductEnrichment), args.Error(1)
	}
}

func (m *MockEnrichmentRepository) FindByProductID(ctx context.Context, productID int64) (*models.ProductEnrichment, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductEnrichment), args.Error(1)
}

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
