package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLDocument implements DOM over a static HTML snapshot, such as the
// product page saved during a debug capture.
type HTMLDocument struct {
	doc *goquery.Document
}

func NewHTMLDocument(r io.Reader) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{doc: doc}, nil
}

func NewHTMLDocumentFromString(html string) (*HTMLDocument, error) {
	return NewHTMLDocument(strings.NewReader(html))
}

// Document exposes the underlying goquery document.
func (d *HTMLDocument) Document() *goquery.Document {
	return d.doc
}

func (d *HTMLDocument) QueryOne(selector string) (Element, error) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}
	return sel, nil
}

func (d *HTMLDocument) QueryAll(selector string) ([]Element, error) {
	var elements []Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, s)
	})
	return elements, nil
}

func (d *HTMLDocument) Text(el Element) (string, error) {
	sel, err := selection(el)
	if err != nil {
		return "", err
	}
	return sel.Text(), nil
}

func (d *HTMLDocument) Attribute(el Element, name string) (string, bool, error) {
	sel, err := selection(el)
	if err != nil {
		return "", false, err
	}
	value, ok := sel.Attr(name)
	return value, ok, nil
}

func selection(el Element) (*goquery.Selection, error) {
	sel, ok := el.(*goquery.Selection)
	if !ok {
		return nil, fmt.Errorf("unexpected element type %T", el)
	}
	return sel, nil
}
