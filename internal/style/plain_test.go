package style

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

func entry(kind, key string, fields map[string]string) *bibdb.Entry {
	return &bibdb.Entry{Type: kind, Key: key, Fields: fields}
}

func TestPlain_Article(t *testing.T) {
	e := entry("article", "knuth84", map[string]string{
		"author":  "Donald E. Knuth",
		"title":   "Literate Programming",
		"journal": "The Computer Journal",
		"volume":  "27",
		"number":  "2",
		"pages":   "97--111",
		"year":    "1984",
	})
	got := NewPlain(DefaultOptions(), false).Format(e)
	require.Equal(t, "Donald E. Knuth. Literate programming. <em>The Computer Journal</em>, 27(2):97–111, 1984.", got)
}

func TestPlain_ArticleDecorated(t *testing.T) {
	e := entry("article", "k", map[string]string{
		"author":  "Jane Doe and John Roe",
		"title":   "On {Go}",
		"journal": "J",
		"year":    "2020",
	})
	got := NewPlain(DefaultOptions(), true).Format(e)
	require.Equal(t,
		"<:bib-article><:bib-names>Jane Doe and John Roe.</:bib-names> "+
			"<:bib-title>On Go.</:bib-title> <em>J</em>, 2020.</:bib-article>",
		got)
}

func TestPlain_BookWithEditorsAndWebRefs(t *testing.T) {
	e := entry("book", "b", map[string]string{
		"editor":    "Ann Alpha and Ben Beta and Cid Gamma",
		"title":     "Collected Works",
		"publisher": "ACME",
		"address":   "Berlin",
		"edition":   "second",
		"year":      "2001",
		"doi":       "10.1/xyz",
	})
	got := NewPlain(DefaultOptions(), false).Format(e)
	require.Equal(t,
		"Ann Alpha, Ben Beta, and Cid Gamma, editors. <em>Collected Works</em>. "+
			"ACME, Berlin, Second edition, 2001. "+
			`<a href="https://doi.org/10.1/xyz">doi:10.1/xyz</a>.`,
		got)
}

func TestPlain_InproceedingsAndThesis(t *testing.T) {
	p := NewPlain(DefaultOptions(), false)

	inproc := entry("inproceedings", "i", map[string]string{
		"author":    "A. Author",
		"title":     "A Paper",
		"booktitle": "Proc. Conf",
		"pages":     "1--2",
		"year":      "2010",
	})
	require.Equal(t, "A. Author. A paper. In <em>Proc. Conf</em>, pages 1–2. 2010.", p.Format(inproc))

	thesis := entry("phdthesis", "t", map[string]string{
		"author": "Pat Student",
		"title":  "Deep Thoughts",
		"school": "Uni",
		"year":   "2015",
	})
	require.Equal(t, "Pat Student. <em>Deep Thoughts</em>. PhD thesis, Uni, 2015.", p.Format(thesis))
}

func TestPlain_UnknownTypeUsesMisc(t *testing.T) {
	e := entry("software", "s", map[string]string{
		"title":        "Tool",
		"howpublished": "GitHub",
		"year":         "2022",
	})
	require.Equal(t, "Tool. GitHub, 2022.", NewPlain(DefaultOptions(), false).Format(e))
	require.Equal(t, "<:bib-misc><:bib-title>Tool.</:bib-title> GitHub, 2022.</:bib-misc>",
		NewPlain(DefaultOptions(), true).Format(e))
}

func TestPlain_EscapesHTML(t *testing.T) {
	e := entry("misc", "m", map[string]string{"title": "A <b> \\& c"})
	require.Equal(t, "A &lt;b&gt; &amp; c.", NewPlain(DefaultOptions(), false).Format(e))
}

func TestPlain_NameStyles(t *testing.T) {
	e := entry("misc", "m", map[string]string{"author": "Jean-Paul van Sartre and Ada Lovelace"})

	abbrev := NewPlain(Options{SortingStyle: SortNone, NameStyle: NamePlain, AbbreviateNames: true}, false)
	require.Equal(t, "J.-P. van Sartre and A. Lovelace.", abbrev.Format(e))

	lastFirst := NewPlain(Options{SortingStyle: SortNone, NameStyle: NameLastFirst}, false)
	require.Equal(t, "van Sartre, Jean-Paul and Lovelace, Ada.", lastFirst.Format(e))
}

func TestPlain_FormatEntriesSorting(t *testing.T) {
	entries := []*bibdb.Entry{
		entry("misc", "z", map[string]string{"author": "Zed Zulu", "year": "2001", "title": "B"}),
		entry("misc", "a2", map[string]string{"author": "Amy Able", "year": "2005", "title": "A"}),
		entry("misc", "a1", map[string]string{"author": "Amy Able", "year": "1999", "title": "C"}),
	}

	unsorted := NewPlain(DefaultOptions(), false).FormatEntries(entries)
	require.Equal(t, []string{"z", "a2", "a1"}, keys(unsorted))

	sorted := NewPlain(Options{SortingStyle: SortAuthorYearTitle, NameStyle: NamePlain}, false).FormatEntries(entries)
	require.Equal(t, []string{"a1", "a2", "z"}, keys(sorted))
	require.Equal(t, "z", entries[0].Key, "input slice must not be reordered")
}

func keys(fs []Formatted) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Key)
	}
	return out
}

func TestCapitalize(t *testing.T) {
	require.Equal(t, "Literate programming", capitalize("Literate Programming"))
	require.Equal(t, "{LaTeX}: a system", capitalize("{LaTeX}: A System"))
	require.Equal(t, `G\"odel's theorem`, capitalize(`G\"odel's Theorem`))
}

func TestSentence(t *testing.T) {
	require.Equal(t, "", sentence("", ""))
	require.Equal(t, "a, b.", sentence("a", "", "b"))
	require.Equal(t, "Done!", sentence("Done!"))
	require.Equal(t, "<em>X.</em>", sentence("<em>X.</em>"))
}
