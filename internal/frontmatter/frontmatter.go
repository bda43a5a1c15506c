// Package frontmatter reads the YAML header of content documents.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Meta is the page metadata a document may declare.
type Meta struct {
	Title    string `yaml:"title"`
	Template string `yaml:"template"`
	// Params holds every key, including title and template.
	Params map[string]any `yaml:"-"`
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter, had is false and body is
// the full input.
func Split(content []byte) (header []byte, body []byte, had bool, err error) {
	nl := newline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A closing delimiter at end of file has no trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-len(nl+"---")+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// Parse splits content and decodes its header into Meta.
func Parse(content []byte) (Meta, []byte, error) {
	header, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	meta := Meta{Params: map[string]any{}}
	if !had || len(bytes.TrimSpace(header)) == 0 {
		return meta, body, nil
	}
	if err := yaml.Unmarshal(header, &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if err := yaml.Unmarshal(header, &meta.Params); err != nil {
		return Meta{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Params == nil {
		meta.Params = map[string]any{}
	}
	return meta, body, nil
}

func newline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
