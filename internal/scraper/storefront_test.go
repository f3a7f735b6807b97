package scraper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/storefront-scraper/internal/parser"
	"github.com/maltedev/storefront-scraper/internal/structured"
)

// fakeBrowser serves canned HTML per URL and records the calls it receives.
type fakeBrowser struct {
	*parser.HTMLDocument

	pages      map[string]string
	navErrs    map[string]error
	scrollErr  error
	shotErr    error
	currentURL string
	calls      []string
}

func newFakeBrowser(t *testing.T, pages map[string]string) *fakeBrowser {
	t.Helper()
	doc, err := parser.NewHTMLDocumentFromString("<html></html>")
	require.NoError(t, err)
	return &fakeBrowser{HTMLDocument: doc, pages: pages, navErrs: map[string]error{}}
}

func (f *fakeBrowser) Navigate(url string) error {
	f.calls = append(f.calls, "navigate "+url)
	if err := f.navErrs[url]; err != nil {
		return err
	}
	html, ok := f.pages[url]
	if !ok {
		html = "<html></html>"
	}
	doc, err := parser.NewHTMLDocumentFromString(html)
	if err != nil {
		return err
	}
	f.HTMLDocument = doc
	f.currentURL = url
	return nil
}

func (f *fakeBrowser) CurrentURL() string { return f.currentURL }

func (f *fakeBrowser) WaitForLoad(time.Duration) { f.calls = append(f.calls, "wait") }

func (f *fakeBrowser) ScrollToBottom() error {
	f.calls = append(f.calls, "scroll")
	return f.scrollErr
}

func (f *fakeBrowser) PageHTML() (string, error) {
	return f.pages[f.currentURL], nil
}

func (f *fakeBrowser) Screenshot(path string) error {
	if f.shotErr != nil {
		return f.shotErr
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (f *fakeBrowser) ExtractStructuredData() (map[string]any, error) {
	return structured.FromDocument(f.Document()), nil
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func TestStorefront_NavigateToSearch(t *testing.T) {
	b := newFakeBrowser(t, nil)
	s := NewStorefront(b, StorefrontOptions{}, nil)

	url, err := s.NavigateToSearch("15247848")
	require.NoError(t, err)

	assert.Equal(t, "https://www.riachuelo.com.br/busca?q=15247848", url)
	assert.Equal(t, []string{
		"navigate https://www.riachuelo.com.br",
		"wait",
		"navigate https://www.riachuelo.com.br/busca?q=15247848",
		"wait",
	}, b.calls)
}

func TestStorefront_SearchURLKeepsRawQuery(t *testing.T) {
	s := NewStorefront(newFakeBrowser(t, nil), StorefrontOptions{BaseURL: "https://shop.example/"}, nil)
	assert.Equal(t, "https://shop.example/busca?q=camisa polo", s.SearchURL("camisa polo"))
}

func TestStorefront_NavigateToSearch_HomeFailure(t *testing.T) {
	b := newFakeBrowser(t, nil)
	b.navErrs[DefaultBaseURL] = errors.New("net::ERR_NAME_NOT_RESOLVED")
	s := NewStorefront(b, StorefrontOptions{}, nil)

	_, err := s.NavigateToSearch("camisa")
	require.Error(t, err)

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, DefaultBaseURL, navErr.URL)
	assert.ErrorIs(t, err, ErrNavigation)
	assert.Len(t, b.calls, 1, "search page must not be attempted after the home page fails")
}

func TestStorefront_FindProductLink(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "showcase relative link",
			html: `<div id="showcase"><ol><li><a href="/camisa-polo-15247848_sku">Camisa</a></li></ol></div>
				<a data-testid="open-product-recommendation" href="/other">Other</a>`,
			want: "https://www.riachuelo.com.br/camisa-polo-15247848_sku",
		},
		{
			name: "recommendation fallback",
			html: `<a data-testid="open-product-recommendation" href="https://www.riachuelo.com.br/vestido">Vestido</a>`,
			want: "https://www.riachuelo.com.br/vestido",
		},
		{
			name: "empty href skips to next selector",
			html: `<a data-testid="open-product-recommendation" href="">x</a>
				<a href="https://www.riachuelo.com.br/saia">Saia</a>`,
			want: "https://www.riachuelo.com.br/saia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searchURL := "https://www.riachuelo.com.br/busca?q=x"
			b := newFakeBrowser(t, map[string]string{searchURL: "<html><body>" + tt.html + "</body></html>"})
			require.NoError(t, b.Navigate(searchURL))

			got, err := NewStorefront(b, StorefrontOptions{}, nil).FindProductLink("x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStorefront_FindProductLink_NotFound(t *testing.T) {
	b := newFakeBrowser(t, nil)

	_, err := NewStorefront(b, StorefrontOptions{}, nil).FindProductLink("nonexistent-xyz-999")
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nonexistent-xyz-999", nf.Query)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Contains(t, err.Error(), "nonexistent-xyz-999")
}

func TestStorefront_NavigateToProduct(t *testing.T) {
	productURL := "https://www.riachuelo.com.br/camisa-15247848_sku"

	t.Run("scrolls after load", func(t *testing.T) {
		b := newFakeBrowser(t, nil)
		err := NewStorefront(b, StorefrontOptions{}, nil).NavigateToProduct(context.Background(), productURL, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"navigate " + productURL, "wait", "scroll"}, b.calls)
	})

	t.Run("scroll failure is a navigation error", func(t *testing.T) {
		b := newFakeBrowser(t, nil)
		b.scrollErr = errors.New("target closed")

		err := NewStorefront(b, StorefrontOptions{}, nil).NavigateToProduct(context.Background(), productURL, false)

		var navErr *NavigationError
		require.ErrorAs(t, err, &navErr)
		assert.Equal(t, productURL, navErr.URL)
	})

	t.Run("debug capture writes and uploads files", func(t *testing.T) {
		dir := t.TempDir()
		b := newFakeBrowser(t, map[string]string{productURL: "<html><body>produto</body></html>"})
		uploader := new(mockUploader)
		uploader.On("Upload", mock.Anything, filepath.Join(dir, "product_page.png")).Return(nil)
		uploader.On("Upload", mock.Anything, filepath.Join(dir, "product_page.html")).Return(errors.New("bucket missing"))

		s := NewStorefront(b, StorefrontOptions{DebugDir: dir, Uploader: uploader}, nil)
		require.NoError(t, s.NavigateToProduct(context.Background(), productURL, true))

		html, err := os.ReadFile(filepath.Join(dir, "product_page.html"))
		require.NoError(t, err)
		assert.Contains(t, string(html), "produto")
		assert.FileExists(t, filepath.Join(dir, "product_page.png"))
		uploader.AssertExpectations(t)
	})

	t.Run("debug capture failure does not fail navigation", func(t *testing.T) {
		dir := t.TempDir()
		b := newFakeBrowser(t, nil)
		b.shotErr = errors.New("screenshot timeout")

		s := NewStorefront(b, StorefrontOptions{DebugDir: dir}, nil)
		require.NoError(t, s.NavigateToProduct(context.Background(), productURL, true))
		assert.NoFileExists(t, filepath.Join(dir, "product_page.png"))
	})
}

func TestStorefront_ExtractProductDetails(t *testing.T) {
	productURL := "https://www.riachuelo.com.br/vestido-midi-15263748_sku"
	html := `<html><head>
		<script type="application/ld+json">{"@type":"ProductGroup","name":"Vestido Midi - Preto",
			"description":"Vestido midi. Poliéster 95%; Elastano 5%",
			"hasVariant":[{"size":"M","offers":{"price":"139.90"}},{"size":"P","offers":{"price":"139.90"}}]}</script>
	</head><body>
		<nav aria-label="breadcrumb"><a>Home</a><a>Feminino</a><a>Vestidos</a></nav>
		<img src="https://static.riachuelo.com.br/portrait/vestido.jpg">
	</body></html>`

	b := newFakeBrowser(t, map[string]string{productURL: html})
	require.NoError(t, b.Navigate(productURL))

	p, err := NewStorefront(b, StorefrontOptions{}, nil).ExtractProductDetails()
	require.NoError(t, err)

	assert.Equal(t, "Vestido Midi - Preto", p.Name)
	assert.Equal(t, "R$139.90", p.Price)
	assert.Equal(t, "15263748", p.SKU)
	assert.Equal(t, "Preto", p.Color)
	assert.Equal(t, []string{"M", "P"}, p.Sizes)
	assert.Equal(t, "Feminino > Vestidos", p.Category)
	assert.Equal(t, []string{"https://static.riachuelo.com.br/portrait/vestido.jpg"}, p.Images)
	assert.Equal(t, productURL, p.URL)
	assert.False(t, p.HasDiscount())
}
