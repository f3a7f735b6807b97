package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maltedev/storefront-scraper/internal/models"
	"github.com/maltedev/storefront-scraper/internal/parser"
)

const (
	DefaultBaseURL     = "https://www.riachuelo.com.br"
	DefaultLoadTimeout = 15 * time.Second

	platformName   = "Riachuelo"
	searchPath     = "/busca"
	screenshotFile = "product_page.png"
	htmlFile       = "product_page.html"
)

// ProductLinkSelectors are tried in order against the search results page.
var ProductLinkSelectors = []string{
	"#showcase ol > li a[href]",
	"[data-testid='open-product-recommendation']",
	"a[href*='riachuelo']",
}

type StorefrontOptions struct {
	BaseURL     string
	LoadTimeout time.Duration
	DebugDir    string
	Uploader    ArtifactUploader
}

// Storefront drives a Riachuelo search-then-detail scrape through a Browser.
type Storefront struct {
	browser  Browser
	resolver *parser.Resolver
	opts     StorefrontOptions
	logger   *slog.Logger
}

func NewStorefront(b Browser, opts StorefrontOptions, logger *slog.Logger) *Storefront {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.LoadTimeout == 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}

	return &Storefront{
		browser:  b,
		resolver: parser.NewResolver(logger),
		opts:     opts,
		logger:   logger.With("component", "storefront", "platform", platformName),
	}
}

func (s *Storefront) PlatformName() string {
	return platformName
}

// SearchURL appends the query verbatim.
func (s *Storefront) SearchURL(query string) string {
	return s.opts.BaseURL + searchPath + "?q=" + query
}

// NavigateToSearch loads the home page first; the search page relies on the
// session it establishes.
func (s *Storefront) NavigateToSearch(query string) (string, error) {
	if err := s.navigate(s.opts.BaseURL); err != nil {
		return "", err
	}
	s.browser.WaitForLoad(s.opts.LoadTimeout)

	if err := s.navigate(s.SearchURL(query)); err != nil {
		return "", err
	}
	s.browser.WaitForLoad(s.opts.LoadTimeout)

	return s.browser.CurrentURL(), nil
}

// FindProductLink returns the absolute URL of the first search result. The
// first selector whose element carries an href wins.
func (s *Storefront) FindProductLink(query string) (string, error) {
	for _, selector := range ProductLinkSelectors {
		el, err := s.browser.QueryOne(selector)
		if err != nil {
			s.logger.Debug("selector query failed", "selector", selector, "error", err)
			continue
		}
		if el == nil {
			continue
		}

		href, ok, err := s.browser.Attribute(el, "href")
		if err != nil || !ok || href == "" {
			continue
		}

		s.logger.Debug("product link found", "selector", selector, "href", href)
		return s.absoluteURL(href), nil
	}

	return "", &NotFoundError{Query: query}
}

func (s *Storefront) NavigateToProduct(ctx context.Context, url string, saveDebugFiles bool) error {
	if err := s.navigate(url); err != nil {
		return err
	}
	s.browser.WaitForLoad(s.opts.LoadTimeout)

	if err := s.browser.ScrollToBottom(); err != nil {
		return &NavigationError{URL: url, Reason: "scroll to bottom failed", Err: err}
	}

	if saveDebugFiles {
		s.captureDebug(ctx)
	}
	return nil
}

func (s *Storefront) ExtractProductDetails() (*models.Product, error) {
	data, err := s.browser.ExtractStructuredData()
	if err != nil {
		s.logger.Warn("structured data unavailable, using DOM only", "error", err)
		data = nil
	}

	return s.resolver.Resolve(data, s.browser, s.browser.CurrentURL()), nil
}

func (s *Storefront) navigate(url string) error {
	s.logger.Debug("navigating", "url", url)
	if err := s.browser.Navigate(url); err != nil {
		return &NavigationError{URL: url, Reason: err.Error(), Err: err}
	}
	return nil
}

func (s *Storefront) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return s.opts.BaseURL + href
}

// captureDebug writes a full-page screenshot and the page HTML. Failures
// only produce warnings.
func (s *Storefront) captureDebug(ctx context.Context) {
	if s.opts.DebugDir != "" {
		if err := os.MkdirAll(s.opts.DebugDir, 0o755); err != nil {
			s.logger.Warn("failed to create debug directory", "dir", s.opts.DebugDir, "error", err)
			return
		}
	}

	var saved []string

	shot := filepath.Join(s.opts.DebugDir, screenshotFile)
	if err := s.browser.Screenshot(shot); err != nil {
		s.logger.Warn("failed to save screenshot", "path", shot, "error", err)
	} else {
		saved = append(saved, shot)
	}

	htmlPath := filepath.Join(s.opts.DebugDir, htmlFile)
	if err := s.saveHTML(htmlPath); err != nil {
		s.logger.Warn("failed to save page html", "path", htmlPath, "error", err)
	} else {
		saved = append(saved, htmlPath)
	}

	s.logger.Info("debug files saved", "files", saved)

	if s.opts.Uploader == nil {
		return
	}
	for _, path := range saved {
		if err := s.opts.Uploader.Upload(ctx, path); err != nil {
			s.logger.Warn("failed to upload debug file", "path", path, "error", err)
		}
	}
}

func (s *Storefront) saveHTML(path string) error {
	html, err := s.browser.PageHTML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
