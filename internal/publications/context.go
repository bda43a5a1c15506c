// Package publications populates a generation context with formatted
// bibliography entries.
//
// The populator is the one place that talks to the bibliography and style
// layers. Both the generator-init hook and the bibliography directive call
// AddToContext; it writes the flat entry list under KeyPublications and the
// tag-grouped mapping under KeyLists.
package publications

import (
	"html/template"
	"maps"
)

// Context keys written by the populator.
const (
	KeyPublications = "publications"
	KeyLists        = "publications_lists"
)

// Context is the key-value store handed to templates. It is owned by the
// host generator.
type Context map[string]any

// Clone returns a shallow copy. Values are shared; the populator only ever
// replaces values, so writes to the clone never reach the original.
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	return maps.Clone(c)
}

// Publications returns the flat entry list, or nil when absent.
func (c Context) Publications() []Entry {
	entries, _ := c[KeyPublications].([]Entry)
	return entries
}

// Lists returns the tag-grouped entries, or nil when absent.
func (c Context) Lists() Groups {
	groups, _ := c[KeyLists].(Groups)
	return groups
}

// Entry is one formatted bibliography record.
type Entry struct {
	Key  string
	Type string
	Year string
	// Text is the rendered citation, safe to emit as HTML.
	Text template.HTML
	// BibTeX is the entry re-serialized as BibTeX source.
	BibTeX string
	// PDF, Slides and Poster are link fields; empty when absent.
	PDF    string
	Slides string
	Poster string
	// Fields holds every source field (raw values) by lower-case name.
	Fields map[string]string
}

// Field returns a source field by name.
func (e Entry) Field(name string) string {
	return e.Fields[name]
}

// Groups maps a tag to the entries carrying it, in entry order.
type Groups map[string][]Entry
