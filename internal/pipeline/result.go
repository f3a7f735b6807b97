package pipeline

import (
	"fmt"

	"github.com/maltedev/storefront-scraper/internal/models"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindNotFound   Kind = "product_not_found"
	KindNavigation Kind = "navigation_error"
	KindAIGateway  Kind = "ai_error"
	KindUnexpected Kind = "unexpected_error"
)

// StepAICall marks failures raised by the model gateway.
const StepAICall = "ai_call"

// Failure is the error arm of both result unions.
type Failure struct {
	Kind    Kind   `json:"error_type"`
	Message string `json:"message"`
	Query   string `json:"query,omitempty"`
	Step    string `json:"step,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (*Failure) scrapeResult() {}
func (*Failure) enrichResult() {}

// ScrapeResult is either *ScrapeSuccess or *Failure.
type ScrapeResult interface {
	scrapeResult()
}

type ScrapeSuccess struct {
	Product *models.Product `json:"product"`
}

func (*ScrapeSuccess) scrapeResult() {}

// EnrichResult is either *EnrichSuccess or *Failure.
type EnrichResult interface {
	enrichResult()
}

type EnrichSuccess struct {
	Enrichment *models.ProductEnrichment `json:"enrichment"`
}

func (*EnrichSuccess) enrichResult() {}
