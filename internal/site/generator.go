// Package site is the static-site generator that hosts the bibliography
// plugin. It owns the generation context, looks up templates, renders
// Markdown content with the bibliography directive and writes pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"git.home.luguber.info/inful/docbib/internal/config"
	"git.home.luguber.info/inful/docbib/internal/directive"
	derrors "git.home.luguber.info/inful/docbib/internal/errors"
	"git.home.luguber.info/inful/docbib/internal/frontmatter"
	"git.home.luguber.info/inful/docbib/internal/logfields"
	"git.home.luguber.info/inful/docbib/internal/metrics"
	"git.home.luguber.info/inful/docbib/internal/publications"
	"git.home.luguber.info/inful/docbib/internal/style"
)

// Context keys set by the generator.
const (
	KeySite = "site"
	KeyPage = "page"
)

// PageTemplate renders documents that do not name a template.
const PageTemplate = "page"

// Site is the site-wide information exposed to templates.
type Site struct {
	Title  string
	Params map[string]any
}

// Page is one rendered content document.
type Page struct {
	Title   string
	Path    string
	Content template.HTML
	Params  map[string]any
}

// Generator builds a site. It implements directive.Host.
type Generator struct {
	cfg       *config.Config
	ctx       publications.Context
	templates *templateSet
	engine    publications.Engine
	populator *publications.Populator
	directive *directive.Directive
	md        goldmark.Markdown
	recorder  metrics.Recorder
	logger    *slog.Logger
}

var _ directive.Host = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithEngine replaces the citation style engine. A nil engine disables
// bibliography formatting.
func WithEngine(engine publications.Engine) Option {
	return func(g *Generator) {
		g.engine = engine
	}
}

// New returns a generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:       cfg,
		templates: newTemplateSet(cfg.Site.TemplatesDir),
		engine:    style.Engine{},
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.populator = publications.NewPopulator(cfg.Publications, g.engine,
		publications.WithRecorder(g.recorder), publications.WithLogger(g.logger))
	g.directive = directive.New(g, g.populator,
		directive.WithRecorder(g.recorder), directive.WithLogger(g.logger))
	g.md = goldmark.New(goldmark.WithExtensions(extension.GFM, g.directive.Extension()))
	g.ctx = g.baseContext()
	return g
}

// Settings implements directive.Host.
func (g *Generator) Settings() config.PublicationsConfig { return g.cfg.Publications }

// Root implements directive.Host.
func (g *Generator) Root() string { return g.cfg.Site.Root }

// Context implements directive.Host.
func (g *Generator) Context() publications.Context { return g.ctx }

// SetContext implements directive.Host.
func (g *Generator) SetContext(ctx publications.Context) { g.ctx = ctx }

// Template implements directive.Host.
func (g *Generator) Template(name string) (directive.Template, error) {
	tmpl, err := g.templates.lookup(name)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (g *Generator) baseContext() publications.Context {
	return publications.Context{
		KeySite: Site{Title: g.cfg.Site.Title, Params: g.cfg.Site.Params},
	}
}

// Init resets the context and runs the populator's init hook.
func (g *Generator) Init() error {
	g.ctx = g.baseContext()
	g.templates.reset()
	return g.populator.Init(g.ctx)
}

// Build renders every Markdown document under the content directory and
// every direct template into the output directory. Document failures do not
// stop the build; they are returned together once all documents are done.
func (g *Generator) Build(ctx context.Context) error {
	start := time.Now()
	logger := g.logger.With(logfields.BuildID(uuid.NewString()))
	logger.Info("Build started", logfields.Path(g.cfg.Site.OutputDir))

	if err := g.Init(); err != nil {
		return err
	}
	if err := os.MkdirAll(g.cfg.Site.OutputDir, 0o750); err != nil {
		return derrors.FileSystem("create output dir", err).WithContext("path", g.cfg.Site.OutputDir)
	}

	docs, err := g.documents()
	if err != nil {
		return err
	}

	var errs []error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := g.renderDocument(doc)
		g.recorder.IncDocumentResult(metrics.Result(err))
		if err != nil {
			logger.Error("Document failed", logfields.Document(doc), logfields.Error(err))
			errs = append(errs, derrors.DocumentFailed(doc, err))
			continue
		}
		logger.Debug("Document rendered", logfields.Document(doc))
	}

	for _, name := range g.cfg.Site.DirectTemplates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.renderDirect(name); err != nil {
			logger.Error("Direct template failed", logfields.Template(name), logfields.Error(err))
			errs = append(errs, err)
		}
	}

	logger.Info("Build finished",
		slog.Int("documents", len(docs)),
		slog.Int("failed", len(errs)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return errors.Join(errs...)
}

// documents lists Markdown files under the content directory in lexical
// order. A missing content directory yields no documents.
func (g *Generator) documents() ([]string, error) {
	root := g.cfg.Site.ContentDir
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		g.logger.Debug("No content directory", logfields.Path(root))
		return nil, nil
	}
	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, derrors.FileSystem("walk content", err).WithContext("path", root)
	}
	return docs, nil
}

// RenderMarkdown converts a Markdown body, running bibliography directives
// with docPath as the referencing document.
func (g *Generator) RenderMarkdown(body []byte, docPath string) (template.HTML, error) {
	pc := parser.NewContext()
	directive.SetDocumentPath(pc, docPath)

	var buf bytes.Buffer
	if err := g.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return "", err
	}
	if errs := directive.Errors(pc); len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output
}

func (g *Generator) renderDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	content, err := g.RenderMarkdown(body, abs)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(g.cfg.Site.ContentDir, path)
	if err != nil {
		return err
	}
	name := meta.Template
	if name == "" {
		name = PageTemplate
	}

	page := Page{Title: meta.Title, Path: filepath.ToSlash(rel), Content: content, Params: meta.Params}
	out := filepath.Join(g.cfg.Site.OutputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".html")
	return g.renderTo(name, out, &page)
}

func (g *Generator) renderDirect(name string) error {
	return g.renderTo(name, filepath.Join(g.cfg.Site.OutputDir, name+templateExt), nil)
}

// renderTo executes a template against a copy of the context. page is
// exposed under KeyPage when set.
func (g *Generator) renderTo(name, out string, page *Page) error {
	var buf bytes.Buffer
	if err := g.Render(&buf, name, page); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return derrors.FileSystem("create page dir", err).WithContext("path", out)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o600); err != nil {
		return derrors.FileSystem("write page", err).WithContext("path", out)
	}
	return nil
}

// FilterTag narrows the context's publications to one tag group.
func (g *Generator) FilterTag(tag string) error {
	group, ok := g.ctx.Lists()[tag]
	if !ok {
		return derrors.New(derrors.CategoryValidation, derrors.SeverityError,
			fmt.Sprintf("no publications tagged %q", tag)).WithContext("tag", tag)
	}
	g.ctx[publications.KeyPublications] = group
	g.logger.Debug("Filtered publications", logfields.Tag(tag), logfields.Entries(len(group)))
	return nil
}

// Render executes the named template against the current context.
func (g *Generator) Render(w io.Writer, name string, page *Page) error {
	tmpl, err := g.templates.lookup(name)
	if err != nil {
		return err
	}
	data := g.ctx.Clone()
	if page != nil {
		data[KeyPage] = *page
	}
	if err := tmpl.Execute(w, data); err != nil {
		return derrors.TemplateRender(name, err)
	}
	return nil
}
