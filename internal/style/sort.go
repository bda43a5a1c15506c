package style

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

// sortEntries orders entries in place according to the sorting style.
// SortNone keeps the database order.
func sortEntries(entries []*bibdb.Entry, sorting string) {
	if sorting != SortAuthorYearTitle {
		return
	}
	col := collate.New(language.Und, collate.Loose, collate.Numeric)
	keys := make(map[*bibdb.Entry][3]string, len(entries))
	for _, e := range entries {
		keys[e] = [3]string{authorKey(e), bibdb.Clean(e.Field("year")), bibdb.Clean(e.Field("title"))}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := keys[entries[i]], keys[entries[j]]
		for k := range a {
			if c := col.CompareString(a[k], b[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// authorKey is the "Last First" form of every author, falling back to
// editors.
func authorKey(e *bibdb.Entry) string {
	people := e.Persons("author")
	if len(people) == 0 {
		people = e.Persons("editor")
	}
	parts := make([]string, 0, len(people))
	for _, p := range people {
		parts = append(parts, join(" ", p.LastNames(), bibdb.Clean(strings.Join(p.First, " "))))
	}
	return strings.Join(parts, "  ")
}
