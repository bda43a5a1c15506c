package style

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

// decorator wraps named parts of a citation in `<:bib-NAME>` markers when
// enabled. The markers are turned into spans after rendering.
type decorator bool

func (d decorator) wrap(name, s string) string {
	if !d || s == "" {
		return s
	}
	return "<:bib-" + name + ">" + s + "</:bib-" + name + ">"
}

// text returns the cleaned, HTML escaped value of s.
func text(s string) string {
	return html.EscapeString(bibdb.Clean(s))
}

func em(s string) string {
	if s == "" {
		return ""
	}
	return "<em>" + s + "</em>"
}

func href(url, label string) string {
	return `<a href="` + html.EscapeString(url) + `">` + label + "</a>"
}

// join concatenates the non-empty parts with sep.
func join(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

var trailingTags = regexp.MustCompile(`(<[^>]*>)+$`)

// sentence joins parts with ", " and terminates the result with a period
// unless it already ends in punctuation.
func sentence(parts ...string) string {
	s := join(", ", parts...)
	if s == "" {
		return ""
	}
	visible := trailingTags.ReplaceAllString(s, "")
	if strings.HasSuffix(visible, ".") || strings.HasSuffix(visible, "?") || strings.HasSuffix(visible, "!") {
		return s
	}
	return s + "."
}

// toplevel joins sentences with single spaces.
func toplevel(sentences ...string) string {
	return join(" ", sentences...)
}

// capitalize lower-cases a raw title except for its first letter, brace
// protected groups and LaTeX command names.
func capitalize(raw string) string {
	var b strings.Builder
	depth := 0
	first := true
	inCommand := false
	for _, r := range raw {
		switch {
		case r == '{':
			depth++
			inCommand = false
		case r == '}':
			if depth > 0 {
				depth--
			}
			inCommand = false
		case r == '\\':
			inCommand = true
			b.WriteRune(r)
			continue
		}
		if inCommand {
			if isASCIILetter(r) {
				b.WriteRune(r)
				continue
			}
			inCommand = false
		}
		if depth == 0 && unicode.IsLetter(r) {
			if first {
				b.WriteRune(unicode.ToUpper(r))
				first = false
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			continue
		}
		if depth > 0 && unicode.IsLetter(r) {
			first = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
