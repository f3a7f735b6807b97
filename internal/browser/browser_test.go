package browser

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.Equal(t, EngineFirefox, opts.Engine)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Equal(t, "pt-BR", opts.Locale)
	assert.Equal(t, "America/Sao_Paulo", opts.TimezoneID)
}

func TestPage_StructuredData(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	b, err := New(DefaultOptions(), nil)
	require.NoError(t, err)
	defer b.Close()

	page, err := b.NewPage()
	require.NoError(t, err)

	html := `<html><head><script type="application/ld+json">{"@type":"Product","name":"Camisa"}</script></head>
		<body><h1>Camisa</h1><a class="item" href="/camisa-12345678_sku">x</a></body></html>`
	require.NoError(t, page.page.SetContent(html))

	data, err := page.ExtractStructuredData()
	require.NoError(t, err)
	assert.Equal(t, "Camisa", data["name"])

	el, err := page.QueryOne("a.item")
	require.NoError(t, err)
	require.NotNil(t, el)

	href, ok, err := page.Attribute(el, "href")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/camisa-12345678_sku", href)

	missing, err := page.QueryOne("#missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
