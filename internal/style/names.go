package style

import (
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

// formatPerson renders one name as display text (not escaped).
func formatPerson(p bibdb.Person, opts Options) string {
	first := make([]string, 0, len(p.First))
	for _, w := range p.First {
		if opts.AbbreviateNames {
			w = abbreviate(w)
		} else {
			w = bibdb.Clean(w)
		}
		first = append(first, w)
	}
	vonLast := bibdb.Clean(strings.Join(append(append([]string{}, p.Prelast...), p.Last...), " "))
	lineage := bibdb.Clean(strings.Join(p.Lineage, " "))

	if opts.NameStyle == NameLastFirst {
		return join(", ", vonLast, lineage, strings.Join(first, " "))
	}
	s := join(" ", strings.Join(first, " "), vonLast)
	return join(", ", s, lineage)
}

// abbreviate turns a given name into its initial; hyphenated names keep
// one initial per part ("Jean-Paul" becomes "J.-P.").
func abbreviate(word string) string {
	clean := bibdb.Clean(word)
	parts := strings.Split(clean, "-")
	for i, part := range parts {
		r, _ := utf8.DecodeRuneInString(part)
		if r == utf8.RuneError {
			continue
		}
		parts[i] = string(r) + "."
	}
	return strings.Join(parts, "-")
}

// formatNameList joins names as "A", "A and B" or "A, B, and C".
func formatNameList(people []bibdb.Person, opts Options) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if n := formatPerson(p, opts); n != "" {
			names = append(names, n)
		}
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
