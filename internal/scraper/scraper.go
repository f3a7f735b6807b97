package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maltedev/storefront-scraper/internal/models"
	"github.com/maltedev/storefront-scraper/internal/parser"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNavigation      = errors.New("navigation failed")
)

// NotFoundError reports that a search produced no product link.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no product found for query %q", e.Query)
}

func (e *NotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// NavigationError reports a failed page load or page interaction.
type NavigationError struct {
	URL    string
	Reason string
	Err    error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %q: %s", e.URL, e.Reason)
}

func (e *NavigationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNavigation}
	}
	return []error{ErrNavigation, e.Err}
}

// Browser is the page-level surface a storefront drives. Implementations
// own one page; they are not safe for concurrent use.
type Browser interface {
	parser.DOM

	Navigate(url string) error
	CurrentURL() string
	// WaitForLoad is best effort and never fails.
	WaitForLoad(timeout time.Duration)
	ScrollToBottom() error
	PageHTML() (string, error)
	Screenshot(path string) error
	ExtractStructuredData() (map[string]any, error)
}

// Gateway hides storefront specifics from the scrape pipeline.
type Gateway interface {
	PlatformName() string
	NavigateToSearch(query string) (string, error)
	FindProductLink(query string) (string, error)
	NavigateToProduct(ctx context.Context, url string, saveDebugFiles bool) error
	ExtractProductDetails() (*models.Product, error)
}

// ArtifactUploader ships debug captures off the local machine.
type ArtifactUploader interface {
	Upload(ctx context.Context, path string) error
}
