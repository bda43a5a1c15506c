// Package directive implements the bibliography directive: a fenced Markdown
// block that renders a filtered, templated bibliography in place.
//
//	```{bibliography} refs.bib /shared/talks.bib
//	:template: publications
//	:filter_tag: journal
//	:sorting_style: author_year_title
//	:pybtex_style_args:
//	    abbreviate_names: True
//	    name_style: lastfirst
//	@misc{extra, title = {Inline entries are allowed too}}
//	```
//
// An option value continues on lines indented deeper than the option
// itself. The first blank, unindented or @-prefixed line starts the inline
// BibTeX.
//
// Each invocation populates a clone of the host context, renders a host
// template against it and restores the original context afterwards.
package directive

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docbib/internal/config"
	derrors "git.home.luguber.info/inful/docbib/internal/errors"
	"git.home.luguber.info/inful/docbib/internal/logfields"
	"git.home.luguber.info/inful/docbib/internal/metrics"
	"git.home.luguber.info/inful/docbib/internal/publications"
)

// Template is a named template owned by the host.
type Template interface {
	Execute(w io.Writer, data any) error
}

// Host is the generator the directive renders for.
type Host interface {
	Settings() config.PublicationsConfig
	// Root is the directory that absolute directive paths resolve against.
	Root() string
	Context() publications.Context
	SetContext(ctx publications.Context)
	Template(name string) (Template, error)
}

// Invocation is one use of the directive in a document.
type Invocation struct {
	// Args are BibTeX file paths.
	Args []string
	// Options are the raw `:name: value` options.
	Options map[string]string
	// Content is inline BibTeX.
	Content string
	// DocPath is the path of the document holding the directive.
	DocPath string
}

// Directive renders bibliography blocks.
type Directive struct {
	host      Host
	populator *publications.Populator
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// Option configures a Directive.
type Option func(*Directive)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(d *Directive) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Directive) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a directive bound to host.
func New(host Host, populator *publications.Populator, opts ...Option) *Directive {
	d := &Directive{
		host:      host,
		populator: populator,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run renders one invocation and returns the HTML fragment:
// a div carrying the CSS classes around the rendered template.
func (d *Directive) Run(inv Invocation) (out string, err error) {
	defer func() { d.recorder.IncDirectiveResult(metrics.Result(err)) }()

	defaultTemplate := d.host.Settings().DefaultTemplate
	if defaultTemplate == "" {
		defaultTemplate = config.DefaultTemplate
	}
	opts, err := parseOptions(inv.Options, defaultTemplate)
	if err != nil {
		return "", err
	}

	if len(inv.Args) == 0 && strings.TrimSpace(inv.Content) == "" {
		return "", derrors.DirectiveInput("no BibTeX input source given")
	}

	classes := opts.classes
	if classes == nil {
		classes = defaultClasses(inv.Args)
	}

	files := make([]string, 0, len(inv.Args))
	for _, arg := range inv.Args {
		path, err := ResolvePath(d.host.Root(), inv.DocPath, arg)
		if err != nil {
			return "", derrors.DirectiveInput(fmt.Sprintf("cannot resolve %q: %v", arg, err))
		}
		files = append(files, path)
	}

	body, err := d.render(opts, publications.Request{
		Files:     files,
		Source:    inv.Content,
		StyleArgs: opts.styleArgs,
	})
	if err != nil {
		d.logger.Warn("Bibliography directive failed",
			logfields.Document(inv.DocPath), logfields.Template(opts.template), logfields.Error(err))
		return "", err
	}

	return fmt.Sprintf(`<div class="%s">%s</div>`, html.EscapeString(strings.Join(classes, " ")), body), nil
}

// render swaps the host context for a clone, populates and renders it, and
// restores the original context on every path out.
func (d *Directive) render(opts options, req publications.Request) (string, error) {
	original := d.host.Context()
	scoped := original.Clone()
	d.host.SetContext(scoped)
	defer d.host.SetContext(original)

	maps.Copy(scoped, opts.templateOptions)

	if err := d.populator.AddToContext(scoped, req); err != nil {
		return "", derrors.DirectiveRender(opts.template, err)
	}

	if opts.filterTag != "" {
		group, ok := scoped.Lists()[opts.filterTag]
		if !ok {
			return "", derrors.DirectiveRender(opts.template,
				fmt.Errorf("no publications tagged %q", opts.filterTag))
		}
		scoped[publications.KeyPublications] = group
	}

	tmpl, err := d.host.Template(opts.template)
	if err != nil {
		return "", derrors.DirectiveRender(opts.template, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, scoped); err != nil {
		return "", derrors.DirectiveRender(opts.template, err)
	}
	return buf.String(), nil
}

func defaultClasses(args []string) []string {
	classes := []string{"bibliography"}
	for _, arg := range args {
		classes = append(classes, filepath.Base(arg))
	}
	return classes
}

// ResolvePath makes a directive path absolute. Paths starting with a
// separator are relative to root; others are relative to the directory of
// the referencing document.
func ResolvePath(root, docPath, path string) (string, error) {
	var joined string
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, string(filepath.Separator)) {
		joined = filepath.Join(root, path[1:])
	} else {
		docDir := "."
		if docPath != "" {
			docDir = filepath.Dir(docPath)
		}
		joined = filepath.Join(docDir, path)
	}
	return filepath.Abs(joined)
}
