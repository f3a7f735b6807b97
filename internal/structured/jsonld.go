// Package structured selects the product record from schema.org JSON-LD
// blocks embedded in a page.
package structured

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScriptSelector matches the JSON-LD script tags of a page.
const ScriptSelector = `script[type="application/ld+json"]`

const graphKey = "@graph"

var errTrailingData = errors.New("unexpected data after JSON-LD value")

var productTypes = map[string]bool{
	"Product":      true,
	"ProductGroup": true,
}

// SelectProduct returns the first Product or ProductGroup object found in
// the given raw JSON-LD blocks, in document order. Blocks that fail to parse
// are skipped. Returns nil when no block carries a product.
func SelectProduct(blocks []string) map[string]any {
	for _, block := range blocks {
		data, err := decode(block)
		if err != nil {
			continue
		}
		if found := find(data); found != nil {
			return found
		}
	}
	return nil
}

// FromDocument collects the JSON-LD blocks of a parsed HTML document and
// selects the product among them.
func FromDocument(doc *goquery.Document) map[string]any {
	var blocks []string
	doc.Find(ScriptSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	return SelectProduct(blocks)
}

// decode keeps numeric literals as json.Number so prices retain their
// original textual form.
func decode(block string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(block))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// A block holds exactly one value; anything after it invalidates it.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

func find(v any) map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if found := find(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isProduct(node["@type"]) {
			return node
		}
		if graph, ok := node[graphKey]; ok {
			return find(graph)
		}
	}
	return nil
}

func isProduct(t any) bool {
	switch v := t.(type) {
	case string:
		return productTypes[v]
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && productTypes[s] {
				return true
			}
		}
	}
	return false
}
