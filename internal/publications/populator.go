package publications

import (
	"errors"
	"html/template"
	"log/slog"
	"maps"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
	"git.home.luguber.info/inful/docbib/internal/config"
	derrors "git.home.luguber.info/inful/docbib/internal/errors"
	"git.home.luguber.info/inful/docbib/internal/logfields"
	"git.home.luguber.info/inful/docbib/internal/metrics"
	"git.home.luguber.info/inful/docbib/internal/style"
)

// Request describes one population pass.
type Request struct {
	// Files are BibTeX files, parsed in order.
	Files []string
	// Source is inline BibTeX parsed after the files.
	Source string
	// StyleArgs override the configured style arguments.
	StyleArgs map[string]any
}

// Engine builds citation styles.
type Engine interface {
	Plain(opts style.Options, decorate bool) style.Style
	Custom(pluginPath string, opts style.Options, decorate bool) (style.Style, error)
}

// Populator adds formatted publications to a Context.
type Populator struct {
	settings config.PublicationsConfig
	engine   Engine
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Populator.
type Option func(*Populator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Populator) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Populator) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPopulator returns a populator for the given settings. A nil engine
// leaves the populator in degraded mode: every call logs a warning and
// leaves the context untouched.
func NewPopulator(settings config.PublicationsConfig, engine Engine, opts ...Option) *Populator {
	p := &Populator{
		settings: settings,
		engine:   engine,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings returns the publication settings the populator was built with.
func (p *Populator) Settings() config.PublicationsConfig {
	return p.settings
}

// Init is the generator-init hook: it loads the configured source files
// into ctx. Without configured sources it does nothing.
func (p *Populator) Init(ctx Context) error {
	if len(p.settings.Src) == 0 {
		return nil
	}
	return p.AddToContext(ctx, Request{Files: p.settings.Src})
}

// AddToContext parses the requested sources, formats every entry and writes
// KeyPublications and KeyLists into ctx. On error ctx is not modified.
func (p *Populator) AddToContext(ctx Context, req Request) error {
	if p.engine == nil {
		p.logger.Warn("Bibliography formatting engine unavailable; publications disabled")
		return nil
	}
	start := time.Now()

	st, err := p.resolveStyle(req.StyleArgs)
	if err != nil {
		return err
	}

	db, err := p.collect(req)
	if err != nil {
		return err
	}

	formatted := st.FormatEntries(db.Entries())
	entries, groups := p.build(db, formatted)

	ctx[KeyPublications] = entries
	ctx[KeyLists] = groups

	elapsed := time.Since(start)
	p.recorder.ObservePopulateDuration(elapsed)
	p.recorder.AddEntriesFormatted(len(entries))
	p.logger.Debug("Publications added to context",
		logfields.Entries(len(entries)),
		slog.Int("groups", len(groups)),
		logfields.Style(st.Name()),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}

// resolveStyle merges configured and requested style arguments and picks
// the plain or custom style.
func (p *Populator) resolveStyle(args map[string]any) (style.Style, error) {
	merged := maps.Clone(p.settings.StyleArgs)
	if merged == nil {
		merged = map[string]any{}
	}
	maps.Copy(merged, args)

	opts, err := style.ParseOptions(merged)
	if err != nil {
		return nil, derrors.StyleOption("style_args", err)
	}
	if len(opts.Ignored) > 0 {
		p.logger.Warn("Ignoring unsupported style arguments", slog.Any("keys", opts.Ignored))
	}

	plain := p.engine.Plain(opts, p.settings.DecorateHTML)
	if !p.settings.CustomStyle {
		return plain, nil
	}

	custom, err := p.engine.Custom(p.settings.PluginPath, opts, p.settings.DecorateHTML)
	switch {
	case err == nil:
		return custom, nil
	case errors.Is(err, style.ErrCustomStyleNotFound):
		p.logger.Warn("Custom style not found, using plain style",
			logfields.Path(p.settings.PluginPath), logfields.Error(err))
		p.recorder.IncStyleFallback("not_found")
	default:
		p.logger.Warn("Custom style is invalid, using plain style",
			logfields.Path(p.settings.PluginPath), logfields.Error(err))
		p.recorder.IncStyleFallback("invalid")
	}
	return plain, nil
}

// collect parses every source into one database; later sources override
// earlier ones on key collision.
func (p *Populator) collect(req Request) (*bibdb.Database, error) {
	db := bibdb.NewDatabase()
	for _, file := range req.Files {
		parsed, err := bibdb.ParseFile(file)
		if err != nil {
			return nil, derrors.BibTeXParse(file, err)
		}
		p.logger.Debug("Parsed BibTeX file", logfields.Source(file), logfields.Entries(parsed.Len()))
		db.Merge(parsed)
	}
	if strings.TrimSpace(req.Source) != "" {
		parsed, err := bibdb.ParseString(req.Source)
		if err != nil {
			return nil, derrors.BibTeXParse("<inline>", err)
		}
		db.Merge(parsed)
	}
	return db, nil
}

// build turns formatted entries into records and groups them by tag.
func (p *Populator) build(db *bibdb.Database, formatted []style.Formatted) ([]Entry, Groups) {
	splitBy := p.settings.SplitBy
	untaggedTitle := p.settings.UntaggedTitle

	entries := make([]Entry, 0, len(formatted))
	groups := Groups{}
	var untagged []Entry

	for _, f := range formatted {
		src, ok := db.Get(f.Key)
		if !ok {
			continue
		}
		entry := Entry{
			Key:    src.Key,
			Type:   src.Type,
			Year:   src.Field("year"),
			Text:   template.HTML(ReplaceDecorations(f.Text)), //nolint:gosec // produced by the style layer, which escapes field text
			BibTeX: src.BibTeX(),
			PDF:    src.Field("pdf"),
			Slides: src.Field("slides"),
			Poster: src.Field("poster"),
			Fields: maps.Clone(src.Fields),
		}
		entries = append(entries, entry)

		var tags []string
		if splitBy != "" {
			tags = SplitTags(src.Field(splitBy))
		}
		for _, tag := range tags {
			groups[tag] = append(groups[tag], entry)
		}
		if len(tags) == 0 && untaggedTitle != "" {
			untagged = append(untagged, entry)
		}
	}

	if untaggedTitle != "" && len(untagged) > 0 {
		groups[untaggedTitle] = untagged
	}
	return entries, groups
}

// SplitTags splits a comma-separated tag field, trimming each tag and
// dropping empty and repeated tags.
func SplitTags(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	var tags []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(field, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

var (
	openMarker  = regexp.MustCompile(`<:([^>]*)>`)
	closeMarker = regexp.MustCompile(`</:([^>]*)>`)
)

// ReplaceDecorations rewrites `<:name>` markers into `<span class="name">`
// and `</:name>` into `</span>`.
func ReplaceDecorations(s string) string {
	s = openMarker.ReplaceAllString(s, `<span class="$1">`)
	return closeMarker.ReplaceAllString(s, `</span>`)
}
