package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/storefront-scraper/internal/models"
)

// decodeLD mirrors how JSON-LD reaches the resolver: numbers as json.Number.
func decodeLD(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	require.NoError(t, dec.Decode(&data))
	return data
}

func mustDoc(t *testing.T, html string) *HTMLDocument {
	t.Helper()
	doc, err := NewHTMLDocumentFromString(html)
	require.NoError(t, err)
	return doc
}

func emptyDoc(t *testing.T) *HTMLDocument {
	return mustDoc(t, "<html><body></body></html>")
}

func TestResolver_StructuredProduct(t *testing.T) {
	data := decodeLD(t, `{
		"@type": "Product",
		"name": "Camisa Polo Azul",
		"sku": "12345678",
		"brand": {"@type": "Brand", "name": "Pool"},
		"description": "<p>Camisa polo&nbsp;masculina.</p>\n<p>Composição: Algodão 100%</p>",
		"image": ["https://static.riachuelo.com.br/a.jpg", "https://static.riachuelo.com.br/b.jpg"],
		"color": "Azul",
		"category": "Masculino > Camisas",
		"offers": {"@type": "AggregateOffer", "lowPrice": 79.90, "highPrice": 129.90}
	}`)

	p := NewResolver(nil).Resolve(data, emptyDoc(t), "https://www.riachuelo.com.br/camisa-polo-azul-12345678_sku")

	assert.Equal(t, "Camisa Polo Azul", p.Name)
	assert.Equal(t, "R$79.90", p.Price)
	assert.Equal(t, "R$129.90", p.OriginalPrice)
	assert.True(t, p.HasDiscount())
	assert.Equal(t, "12345678", p.SKU)
	assert.Equal(t, "Pool", p.Brand)
	assert.Equal(t, "Camisa polo masculina. Composição: Algodão 100%", p.Description)
	assert.Equal(t, "Algodão 100%", p.Material)
	assert.Equal(t, []string{"https://static.riachuelo.com.br/a.jpg", "https://static.riachuelo.com.br/b.jpg"}, p.Images)
	assert.Equal(t, "https://static.riachuelo.com.br/a.jpg", p.ImageURL)
	assert.Equal(t, "Azul", p.Color)
	assert.Equal(t, "Masculino > Camisas", p.Category)
	assert.Equal(t, "https://www.riachuelo.com.br/camisa-polo-azul-12345678_sku", p.URL)
}

func TestResolver_Price(t *testing.T) {
	tests := []struct {
		name string
		ld   string
		want string
	}{
		{"offer price", `{"offers":{"price":"99.90"}}`, "R$99.90"},
		{"numeric literal kept verbatim", `{"offers":{"price":99.90}}`, "R$99.90"},
		{"low price when price missing", `{"offers":{"lowPrice":59.9}}`, "R$59.9"},
		{"zero price falls through to low price", `{"offers":{"price":0,"lowPrice":49.9}}`, "R$49.9"},
		{"offers list", `{"offers":[{"price":"39.90"},{"price":"10.00"}]}`, "R$39.90"},
		{"first variant offer", `{"hasVariant":[{"offers":{"price":"89.90"}},{"offers":{"price":"1.00"}}]}`, "R$89.90"},
		{"offers without price uses variant", `{"offers":{},"hasVariant":[{"offers":{"price":"19.90"}}]}`, "R$19.90"},
		{"variant offers as list is ignored", `{"hasVariant":[{"offers":[{"price":"19.90"}]}]}`, ""},
		{"no offers", `{"name":"x"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(nil).Resolve(decodeLD(t, tt.ld), emptyDoc(t), "")
			assert.Equal(t, tt.want, p.Price)
		})
	}
}

func TestResolver_OriginalPrice(t *testing.T) {
	tests := []struct {
		name string
		ld   string
		want string
	}{
		{"high differs from low", `{"offers":{"lowPrice":79.9,"highPrice":99.9}}`, "R$99.9"},
		{"high equals low", `{"offers":{"lowPrice":"79.90","highPrice":"79.90"}}`, ""},
		{"high without low", `{"offers":{"highPrice":"99.90"}}`, "R$99.90"},
		{"offers list", `{"offers":[{"highPrice":"99.90"}]}`, ""},
		{"no high price", `{"offers":{"price":"79.90"}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(nil).Resolve(decodeLD(t, tt.ld), emptyDoc(t), "")
			assert.Equal(t, tt.want, p.OriginalPrice)
		})
	}
}

func TestResolver_SKU(t *testing.T) {
	tests := []struct {
		name string
		ld   string
		url  string
		want string
	}{
		{"structured sku", `{"sku":"87654321"}`, "https://x/y-12345678_z", "87654321"},
		{"numeric sku", `{"sku":12345}`, "", "12345"},
		{"from url", `{}`, "https://www.riachuelo.com.br/vestido-longo-15263748_sku", "15263748"},
		{"url without underscore", `{}`, "https://www.riachuelo.com.br/vestido-15263748", ""},
		{"url with short digits", `{}`, "https://www.riachuelo.com.br/vestido-1526_sku", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(nil).Resolve(decodeLD(t, tt.ld), emptyDoc(t), tt.url)
			assert.Equal(t, tt.want, p.SKU)
		})
	}
}

func TestResolver_Brand(t *testing.T) {
	tests := []struct {
		name string
		ld   string
		want string
	}{
		{"brand object", `{"brand":{"name":"Pool"}}`, "Pool"},
		{"brand string", `{"brand":"Fuel"}`, "Fuel"},
		{"brand object without name", `{"brand":{}}`, ""},
		{"brand list", `{"brand":["Pool"]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(nil).Resolve(decodeLD(t, tt.ld), emptyDoc(t), "")
			assert.Equal(t, tt.want, p.Brand)
		})
	}
}

func TestResolver_Description(t *testing.T) {
	data := decodeLD(t, `{"description":"<div>Vestido&#160;midi</div>  <br/>\n\tPoliéster 90%; Elastano 10%  "}`)

	p := NewResolver(nil).Resolve(data, emptyDoc(t), "")

	assert.Equal(t, "Vestido midi Poliéster 90%; Elastano 10%", p.Description)
	assert.Equal(t, "Vestido midi Poliéster 90%; Elastano 10%", p.Material)
}

func TestResolver_ImagesFallbackToDOM(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<img src="https://static.riachuelo.com.br/portrait/1.jpg">
		<img src="https://static.riachuelo.com.br/landscape/2.jpg">
		<img src="https://static.riachuelo.com.br/portrait/1.jpg">
		<img src="https://cdn.other.com/portrait/3.jpg">
		<img src="https://static.riachuelo.com.br/portrait/4.jpg">
	</body></html>`)

	p := NewResolver(nil).Resolve(nil, doc, "")

	assert.Equal(t, []string{
		"https://static.riachuelo.com.br/portrait/1.jpg",
		"https://static.riachuelo.com.br/portrait/4.jpg",
	}, p.Images)
	assert.Equal(t, "https://static.riachuelo.com.br/portrait/1.jpg", p.ImageURL)
}

func TestResolver_ImageString(t *testing.T) {
	p := NewResolver(nil).Resolve(decodeLD(t, `{"image":"https://img/1.jpg"}`), emptyDoc(t), "")
	assert.Equal(t, []string{"https://img/1.jpg"}, p.Images)
}

func TestResolver_Sizes(t *testing.T) {
	tests := []struct {
		name string
		ld   string
		want []string
	}{
		{"numeric sort", `{"hasVariant":[{"size":"42"},{"size":"38"},{"size":"40"},{"size":"38"}]}`, []string{"38", "40", "42"}},
		{"numeric not lexicographic", `{"hasVariant":[{"size":"10"},{"size":"8"},{"size":"9"}]}`, []string{"8", "9", "10"}},
		{"lexicographic fallback", `{"hasVariant":[{"size":"P"},{"size":"M"},{"size":"GG"},{"size":"G"}]}`, []string{"G", "GG", "M", "P"}},
		{"mixed falls back to lexicographic", `{"hasVariant":[{"size":"40"},{"size":"U"}]}`, []string{"40", "U"}},
		{"variants without size", `{"hasVariant":[{"color":"Azul"}]}`, nil},
		{"no variants", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(nil).Resolve(decodeLD(t, tt.ld), emptyDoc(t), "")
			assert.Equal(t, tt.want, p.Sizes)
		})
	}
}

func TestResolver_Color(t *testing.T) {
	tests := []struct {
		name string
		ld   string
		want string
	}{
		{"structured color", `{"name":"Blusa - Preto","color":"Vermelho"}`, "Vermelho"},
		{"last segment of name", `{"name":"Blusa Manga Curta - Off White - Preto "}`, "Preto"},
		{"no separator", `{"name":"Blusa-Preto"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewResolver(nil).Resolve(decodeLD(t, tt.ld), emptyDoc(t), "")
			assert.Equal(t, tt.want, p.Color)
		})
	}
}

func TestResolver_CategoryFromBreadcrumb(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<nav aria-label="breadcrumb">
			<a href="/">Home</a>
			<a href="/feminino"> Feminino </a>
			<a href="/feminino/vestidos">Vestidos</a>
			<a href="#">  </a>
		</nav>
	</body></html>`)

	p := NewResolver(nil).Resolve(decodeLD(t, `{"name":"Vestido"}`), doc, "")

	assert.Equal(t, "Feminino > Vestidos", p.Category)
}

func TestResolver_NameFallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"h1", `<h1> Saia Jeans </h1><div data-testid="product-name">Other</div>`, "Saia Jeans"},
		{"empty h1 skips to test id", `<h1>  </h1><div data-testid="product-name">Short Sarja</div>`, "Short Sarja"},
		{"class fragment", `<span class="pdp-ProductName-title">Jaqueta</span>`, "Jaqueta"},
		{"nothing found", `<p>no name here</p>`, models.UnknownProductName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, "<html><body>"+tt.html+"</body></html>")
			p := NewResolver(nil).Resolve(nil, doc, "")
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestResolver_ColorUsesDOMName(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1>Camiseta Básica - Branco</h1></body></html>`)

	p := NewResolver(nil).Resolve(nil, doc, "")

	assert.Equal(t, "Camiseta Básica - Branco", p.Name)
	assert.Equal(t, "Branco", p.Color)
}

type failingDOM struct{}

func (failingDOM) QueryOne(string) (Element, error)   { return nil, errors.New("page closed") }
func (failingDOM) QueryAll(string) ([]Element, error) { return nil, errors.New("page closed") }
func (failingDOM) Text(Element) (string, error)       { return "", errors.New("page closed") }
func (failingDOM) Attribute(Element, string) (string, bool, error) {
	return "", false, errors.New("page closed")
}

func TestResolver_DOMErrorsAreAbsence(t *testing.T) {
	p := NewResolver(nil).Resolve(nil, failingDOM{}, "")

	assert.Equal(t, models.UnknownProductName, p.Name)
	assert.Empty(t, p.Images)
	assert.Empty(t, p.Category)
	assert.Empty(t, p.Price)
}

func TestResolver_NilDOM(t *testing.T) {
	p := NewResolver(nil).Resolve(decodeLD(t, `{"name":"Camisa"}`), nil, "")
	assert.Equal(t, "Camisa", p.Name)
}
