package parser

// Element is an opaque handle to a node returned by a DOM query. Its concrete
// type belongs to the DOM implementation that produced it.
type Element any

// DOM is the query surface the field resolver needs from a rendered page or
// a static HTML snapshot.
type DOM interface {
	// QueryOne returns the first element matching selector, or nil.
	QueryOne(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)
	Text(el Element) (string, error)
	// Attribute reports whether the attribute is present.
	Attribute(el Element, name string) (string, bool, error)
}
