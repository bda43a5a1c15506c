// Package style formats BibTeX entries into HTML citation text.
//
// The plain style follows the classic BibTeX "plain" layout. When HTML
// decoration is enabled, named parts of each citation are wrapped in
// `<:bib-NAME>...</:bib-NAME>` markers that callers later turn into spans.
package style

import (
	"strings"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

// Formatted is one rendered entry.
type Formatted struct {
	Key  string
	Text string
}

// Style formats a set of entries. Implementations decide the order of the
// result.
type Style interface {
	Name() string
	FormatEntries(entries []*bibdb.Entry) []Formatted
}

// Plain is the built-in citation style.
type Plain struct {
	opts Options
	dec  decorator
}

// NewPlain returns the plain style. decorate enables the `<:bib-*>` markers.
func NewPlain(opts Options, decorate bool) *Plain {
	return &Plain{opts: opts, dec: decorator(decorate)}
}

// Name implements Style.
func (p *Plain) Name() string { return "plain" }

// FormatEntries implements Style.
func (p *Plain) FormatEntries(entries []*bibdb.Entry) []Formatted {
	sorted := append([]*bibdb.Entry(nil), entries...)
	sortEntries(sorted, p.opts.SortingStyle)

	out := make([]Formatted, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, Formatted{Key: e.Key, Text: p.Format(e)})
	}
	return out
}

// Format renders a single entry.
func (p *Plain) Format(e *bibdb.Entry) string {
	tmpl, ok := plainTemplates[e.Type]
	if !ok {
		return p.dec.wrap("misc", plainTemplates["misc"](p, e))
	}
	return p.dec.wrap(e.Type, tmpl(p, e))
}

var plainTemplates = map[string]func(*Plain, *bibdb.Entry) string{
	"article": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(em(text(e.Field("journal"))), p.volumeAndPages(e), p.date(e)),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"book": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.authorOrEditor(e),
			p.btitle(e, "title"),
			p.volumeAndSeries(e),
			sentence(text(e.Field("publisher")), text(e.Field("address")), p.edition(e), p.date(e)),
			p.isbn(e),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"booklet": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(text(e.Field("howpublished")), text(e.Field("address")), p.date(e)),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"inbook": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.authorOrEditor(e),
			sentence(p.btitleText(e, "title"), p.chapterAndPages(e)),
			p.volumeAndSeries(e),
			sentence(text(e.Field("publisher")), text(e.Field("address")), p.edition(e), p.date(e)),
			p.isbn(e),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"incollection": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(
				join(" ", "In", join(", ", p.editor(e, false), em(text(e.Field("booktitle"))))),
				p.volumeAndSeriesText(e),
				p.chapterAndPages(e),
			),
			sentence(text(e.Field("publisher")), text(e.Field("address")), p.edition(e), p.date(e)),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"inproceedings": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(
				join(" ", "In", join(", ", p.editor(e, false), em(text(e.Field("booktitle"))))),
				p.volumeAndSeriesText(e),
				p.pages(e),
			),
			p.addressOrganizationPublisherDate(e),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"manual": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.btitle(e, "title"),
			sentence(text(e.Field("organization")), text(e.Field("address")), p.edition(e), p.date(e)),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"mastersthesis": func(p *Plain, e *bibdb.Entry) string {
		return p.thesis(e, "Master's thesis")
	},
	"phdthesis": func(p *Plain, e *bibdb.Entry) string {
		return p.thesis(e, "PhD thesis")
	},
	"misc": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(text(e.Field("howpublished")), p.date(e)),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"proceedings": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.editor(e, true),
			p.btitle(e, "title"),
			p.volumeAndSeries(e),
			p.addressOrganizationPublisherDate(e),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"techreport": func(p *Plain, e *bibdb.Entry) string {
		kind := text(e.Field("type"))
		if kind == "" {
			kind = "Technical Report"
		}
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(join(" ", kind, text(e.Field("number"))), text(e.Field("institution")), text(e.Field("address")), p.date(e)),
			sentence(text(e.Field("note"))),
			p.webRefs(e),
		)
	},
	"unpublished": func(p *Plain, e *bibdb.Entry) string {
		return toplevel(
			p.names(e, "author"),
			p.title(e, "title"),
			sentence(text(e.Field("note")), p.date(e)),
			p.webRefs(e),
		)
	},
}

func (p *Plain) thesis(e *bibdb.Entry, kind string) string {
	return toplevel(
		p.names(e, "author"),
		p.btitle(e, "title"),
		sentence(kind, text(e.Field("school")), text(e.Field("address")), p.date(e)),
		sentence(text(e.Field("note"))),
		p.webRefs(e),
	)
}

func (p *Plain) namesText(e *bibdb.Entry, role string) string {
	return text(formatNameList(e.Persons(role), p.opts))
}

func (p *Plain) names(e *bibdb.Entry, role string) string {
	return p.dec.wrap("names", sentence(p.namesText(e, role)))
}

func (p *Plain) editor(e *bibdb.Entry, asSentence bool) string {
	people := e.Persons("editor")
	if len(people) == 0 {
		return ""
	}
	word := "editor"
	if len(people) > 1 {
		word = "editors"
	}
	s := text(formatNameList(people, p.opts)) + ", " + word
	if asSentence {
		s = sentence(s)
	}
	return p.dec.wrap("editor", s)
}

func (p *Plain) authorOrEditor(e *bibdb.Entry) string {
	if e.Has("author") {
		return p.dec.wrap("author_or_editor", p.names(e, "author"))
	}
	return p.dec.wrap("author_or_editor", p.editor(e, true))
}

func (p *Plain) title(e *bibdb.Entry, field string) string {
	raw := e.Field(field)
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return p.dec.wrap("title", sentence(text(capitalize(raw))))
}

func (p *Plain) btitleText(e *bibdb.Entry, field string) string {
	return p.dec.wrap("btitle", em(text(e.Field(field))))
}

func (p *Plain) btitle(e *bibdb.Entry, field string) string {
	if !e.Has(field) {
		return ""
	}
	return p.dec.wrap("btitle", sentence(em(text(e.Field(field)))))
}

func (p *Plain) date(e *bibdb.Entry) string {
	return join(" ", text(e.Field("month")), text(e.Field("year")))
}

func (p *Plain) pages(e *bibdb.Entry) string {
	if !e.Has("pages") {
		return ""
	}
	return "pages " + text(e.Field("pages"))
}

func (p *Plain) volumeAndPages(e *bibdb.Entry) string {
	volume := text(e.Field("volume"))
	if volume == "" {
		return p.pages(e)
	}
	if n := text(e.Field("number")); n != "" {
		volume += "(" + n + ")"
	}
	if pages := text(e.Field("pages")); pages != "" {
		return volume + ":" + pages
	}
	return volume
}

func (p *Plain) volumeAndSeriesText(e *bibdb.Entry) string {
	series := em(text(e.Field("series")))
	var s string
	switch {
	case e.Has("volume"):
		s = join(" of ", "volume "+text(e.Field("volume")), series)
	case e.Has("number"):
		s = join(" in ", "number "+text(e.Field("number")), series)
	default:
		s = series
	}
	return p.dec.wrap("volume_and_series", s)
}

func (p *Plain) volumeAndSeries(e *bibdb.Entry) string {
	s := p.volumeAndSeriesText(e)
	if s == "" {
		return ""
	}
	return sentence(s)
}

func (p *Plain) chapterAndPages(e *bibdb.Entry) string {
	s := join(", ", prefixed("chapter ", text(e.Field("chapter"))), p.pages(e))
	return p.dec.wrap("chapter_and_pages", s)
}

func (p *Plain) edition(e *bibdb.Entry) string {
	if !e.Has("edition") {
		return ""
	}
	return p.dec.wrap("edition", text(capitalize(strings.ToLower(e.Field("edition"))))+" edition")
}

func (p *Plain) addressOrganizationPublisherDate(e *bibdb.Entry) string {
	org := text(e.Field("organization"))
	pub := text(e.Field("publisher"))
	var s string
	if e.Has("address") {
		s = toplevel(sentence(text(e.Field("address")), p.date(e)), sentence(org, pub))
	} else {
		s = sentence(org, pub, p.date(e))
	}
	return p.dec.wrap("address_organization_publisher_date", s)
}

func (p *Plain) isbn(e *bibdb.Entry) string {
	if !e.Has("isbn") {
		return ""
	}
	return sentence(p.dec.wrap("isbn", "ISBN "+text(e.Field("isbn"))))
}

func (p *Plain) webRefs(e *bibdb.Entry) string {
	var url string
	if e.Has("url") {
		raw := strings.TrimSpace(e.Field("url"))
		url = "URL: " + href(raw, text(raw))
		if e.Has("urldate") {
			url += " (visited on " + text(e.Field("urldate")) + ")"
		}
		url = p.dec.wrap("url", url)
	}
	refs := sentence(
		url,
		p.link(e, "eprint", "https://arxiv.org/abs/", "arXiv:"),
		p.link(e, "pubmed", "https://www.ncbi.nlm.nih.gov/pubmed/", "PMID:"),
		p.link(e, "doi", "https://doi.org/", "doi:"),
	)
	return p.dec.wrap("web_refs", refs)
}

func (p *Plain) link(e *bibdb.Entry, field, base, label string) string {
	if !e.Has(field) {
		return ""
	}
	raw := strings.TrimSpace(e.Field(field))
	return p.dec.wrap(field, href(base+raw, label+text(raw)))
}

func prefixed(prefix, s string) string {
	if s == "" {
		return ""
	}
	return prefix + s
}
