package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/storefront-scraper/internal/parser"
	"github.com/maltedev/storefront-scraper/internal/structured"
)

const (
	navigationTimeout = 60 * time.Second
	settleDelay       = 3 * time.Second
	scrollDelay       = 1 * time.Second
)

// Page adapts a playwright page to the operations the storefront scraper
// drives. It is not safe for concurrent use.
type Page struct {
	page   playwright.Page
	logger *slog.Logger
}

func NewPage(page playwright.Page, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{
		page:   page,
		logger: logger.With("component", "page"),
	}
}

func (p *Page) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(navigationTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	return nil
}

func (p *Page) CurrentURL() string {
	return p.page.URL()
}

// WaitForLoad waits for network idle and then a fixed settle delay for
// client-side rendering. A load timeout is logged and otherwise ignored.
func (p *Page) WaitForLoad(timeout time.Duration) {
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			p.logger.Debug("network idle not reached", "timeout", timeout, "url", p.page.URL())
		} else {
			p.logger.Warn("wait for load failed", "error", err, "url", p.page.URL())
		}
	}

	p.page.WaitForTimeout(float64(settleDelay.Milliseconds()))
}

func (p *Page) ScrollToBottom() error {
	if _, err := p.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	p.page.WaitForTimeout(float64(scrollDelay.Milliseconds()))
	return nil
}

func (p *Page) PageHTML() (string, error) {
	content, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return content, nil
}

func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	return nil
}

func (p *Page) QueryOne(selector string) (parser.Element, error) {
	handle, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if handle == nil {
		return nil, nil
	}
	return handle, nil
}

func (p *Page) QueryAll(selector string) ([]parser.Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	elements := make([]parser.Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, h)
	}
	return elements, nil
}

func (p *Page) Text(el parser.Element) (string, error) {
	handle, err := elementHandle(el)
	if err != nil {
		return "", err
	}
	return handle.TextContent()
}

func (p *Page) Attribute(el parser.Element, name string) (string, bool, error) {
	handle, err := elementHandle(el)
	if err != nil {
		return "", false, err
	}
	value, err := handle.GetAttribute(name)
	if err != nil {
		return "", false, err
	}
	return value, value != "", nil
}

// ExtractStructuredData returns the product JSON-LD object of the current
// page, or nil when there is none.
func (p *Page) ExtractStructuredData() (map[string]any, error) {
	handles, err := p.page.QuerySelectorAll(structured.ScriptSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to query structured data: %w", err)
	}

	blocks := make([]string, 0, len(handles))
	for _, h := range handles {
		content, err := h.TextContent()
		if err != nil {
			p.logger.Debug("failed to read structured data block", "error", err)
			continue
		}
		if content != "" {
			blocks = append(blocks, content)
		}
	}

	return structured.SelectProduct(blocks), nil
}

func elementHandle(el parser.Element) (playwright.ElementHandle, error) {
	handle, ok := el.(playwright.ElementHandle)
	if !ok {
		return nil, fmt.Errorf("unexpected element type %T", el)
	}
	return handle, nil
}
