// Package bibdb loads BibTeX sources into key-merged databases.
//
// Parsing is delegated to github.com/nickng/bibtex. On top of it the package
// normalizes entry types and field names, merges several sources by citation
// key, splits person fields into names and re-serializes single entries.
package bibdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/nickng/bibtex"
)

// Entry is one BibTeX record. Field names are lower case and values keep
// their LaTeX markup; use Clean for display text.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// Field returns the raw value of a field, or "" when absent.
func (e *Entry) Field(name string) string {
	return e.Fields[strings.ToLower(name)]
}

// Has reports whether the field is present and non-empty.
func (e *Entry) Has(name string) bool {
	return strings.TrimSpace(e.Field(name)) != ""
}

// Persons parses a person field (author, editor) into names.
func (e *Entry) Persons(role string) []Person {
	return ParseNames(e.Field(role))
}

// Database is an ordered collection of entries keyed case-insensitively by
// citation key.
type Database struct {
	order   []string
	entries map[string]*Entry
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{entries: make(map[string]*Entry)}
}

// Add inserts e. An entry with the same key (ignoring case) is replaced in
// place: the later entry wins and keeps the earlier position.
func (d *Database) Add(e *Entry) {
	k := strings.ToLower(e.Key)
	if _, ok := d.entries[k]; !ok {
		d.order = append(d.order, k)
	}
	d.entries[k] = e
}

// Merge adds every entry of other, in order, with Add semantics.
func (d *Database) Merge(other *Database) {
	if other == nil {
		return
	}
	for _, e := range other.Entries() {
		d.Add(e)
	}
}

// Get looks up an entry by citation key.
func (d *Database) Get(key string) (*Entry, bool) {
	e, ok := d.entries[strings.ToLower(key)]
	return e, ok
}

// Len returns the number of distinct keys.
func (d *Database) Len() int {
	return len(d.order)
}

// Entries returns the entries in insertion order.
func (d *Database) Entries() []*Entry {
	out := make([]*Entry, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.entries[k])
	}
	return out
}

// The bibtex parser keeps its lexer state and result in package variables,
// so calls are serialized and the lexer is reset after every failure.
var parseMu sync.Mutex

const (
	// A closing brace always clears the lexer's field mode.
	lexerReset = "}"
	sentinel   = "@misc{docbib, title = {ok}}"
)

// Parse reads BibTeX from r.
func Parse(r io.Reader) (*Database, error) {
	parseMu.Lock()
	defer parseMu.Unlock()

	bib, err := bibtex.Parse(r)
	if err != nil {
		if rerr := resetParser(); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}

	db := NewDatabase()
	for _, be := range bib.Entries {
		e := &Entry{
			Type:   strings.ToLower(strings.TrimSpace(be.Type)),
			Key:    strings.TrimSpace(be.CiteName),
			Fields: make(map[string]string, len(be.Fields)),
		}
		for name, value := range be.Fields {
			if value == nil {
				continue
			}
			e.Fields[strings.ToLower(strings.TrimSpace(name))] = stripDelimiters(value.String())
		}
		db.Add(e)
	}
	return db, nil
}

// resetParser clears the lexer state a failed parse leaves behind and
// checks that a known-good record parses again. Callers hold parseMu.
func resetParser() error {
	_, _ = bibtex.Parse(strings.NewReader(lexerReset))
	bib, err := bibtex.Parse(strings.NewReader(sentinel))
	if err != nil {
		return fmt.Errorf("reset BibTeX parser: %w", err)
	}
	if len(bib.Entries) != 1 {
		return fmt.Errorf("reset BibTeX parser: sentinel parsed into %d entries", len(bib.Entries))
	}
	return nil
}

// ParseString parses BibTeX source text.
func ParseString(src string) (*Database, error) {
	return Parse(strings.NewReader(src))
}

// ParseFile parses the BibTeX file at path.
func ParseFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// stripDelimiters removes one pair of enclosing braces or quotes when they
// wrap the whole value.
func stripDelimiters(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return v
	}
	switch {
	case v[0] == '"' && v[len(v)-1] == '"':
		return v[1 : len(v)-1]
	case v[0] == '{' && v[len(v)-1] == '}' && closesAt(v, 0) == len(v)-1:
		return v[1 : len(v)-1]
	}
	return v
}

// closesAt returns the index of the brace matching the one at open, or -1.
func closesAt(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// personFields are written first when serializing.
var personFields = []string{"author", "editor"}

// BibTeX renders the entry as a standalone BibTeX record.
func (e *Entry) BibTeX() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s", e.Type, e.Key)

	names := make([]string, 0, len(e.Fields))
	for _, name := range personFields {
		if _, ok := e.Fields[name]; ok {
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		if name == "author" || name == "editor" {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	names = append(names, rest...)

	for _, name := range names {
		fmt.Fprintf(&b, ",\n    %s = {%s}", name, e.Fields[name])
	}
	b.WriteString("\n}\n")
	return b.String()
}
