package site

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docbib/internal/config"
	derrors "git.home.luguber.info/inful/docbib/internal/errors"
	"git.home.luguber.info/inful/docbib/internal/publications"
)

const refs = `
@article{knuth84,
  author = {Donald E. Knuth},
  title = {Literate Programming},
  journal = {The Computer Journal},
  year = {1984},
  tags = {journal},
  pdf = {/pdf/knuth84.pdf}
}
@misc{notes,
  title = {Loose Notes},
  year = {2020}
}
`

func newSite(t *testing.T, yaml string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	cfg.Site.Root = root
	cfg.Site.ContentDir = filepath.Join(root, "content")
	cfg.Site.OutputDir = filepath.Join(root, "public")
	cfg.Site.TemplatesDir = filepath.Join(root, "templates")
	for i, src := range cfg.Publications.Src {
		cfg.Publications.Src[i] = filepath.Join(root, src)
	}
	return cfg
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuild_RendersDocumentsWithDirective(t *testing.T) {
	cfg := newSite(t, "site: {title: Lab}\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "papers", "refs.bib"), refs)
	write(t, filepath.Join(cfg.Site.ContentDir, "papers", "index.md"),
		"---\ntitle: Papers\n---\nIntro.\n\n```{bibliography} refs.bib\n```\n")

	g := New(cfg)
	require.NoError(t, g.Build(context.Background()))

	out := read(t, filepath.Join(cfg.Site.OutputDir, "papers", "index.html"))
	require.Contains(t, out, "<title>Papers | Lab</title>")
	require.Contains(t, out, "<p>Intro.</p>")
	require.Contains(t, out, `<div class="bibliography refs.bib">`)
	require.Contains(t, out, `<li id="knuth84">`)
	require.Contains(t, out, "Literate programming.")
	require.Contains(t, out, `href="/pdf/knuth84.pdf"`)
	require.Contains(t, out, "@article{knuth84,")

	require.Nil(t, g.Context().Publications(), "directive output must not leak into the site context")
}

func TestBuild_InitHookAndDirectTemplates(t *testing.T) {
	cfg := newSite(t, `
site:
  title: Lab
  direct_templates: [publications]
publications:
  src: refs.bib
  split_by: tags
  untagged_title: Other
`)
	write(t, filepath.Join(cfg.Site.Root, "refs.bib"), refs)

	g := New(cfg)
	require.NoError(t, g.Build(context.Background()))

	require.Len(t, g.Context().Publications(), 2)
	out := read(t, filepath.Join(cfg.Site.OutputDir, "publications.html"))
	require.Contains(t, out, "<h2>journal</h2>")
	require.Contains(t, out, "<h2>Other</h2>")
	require.Contains(t, out, `<li id="Other-notes">`)
}

func TestBuild_CollectsDocumentErrors(t *testing.T) {
	cfg := newSite(t, "site: {title: Lab}\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "bad.md"), "```{bibliography}\n```\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "missing.md"), "```{bibliography} nope.bib\n```\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "good.md"), "# Fine\n")

	err := New(cfg).Build(context.Background())
	require.Error(t, err)
	require.True(t, derrors.IsCategory(err, derrors.CategoryBuild))
	require.Contains(t, err.Error(), "bad.md")
	require.Contains(t, err.Error(), "missing.md")
	require.NotContains(t, err.Error(), "good.md")

	require.FileExists(t, filepath.Join(cfg.Site.OutputDir, "good.html"))
	require.NoFileExists(t, filepath.Join(cfg.Site.OutputDir, "bad.html"))
}

func TestBuild_InvalidInlineBibTeXFailsOnlyItsDocument(t *testing.T) {
	cfg := newSite(t, "site: {title: Lab}\n")
	write(t, filepath.Join(cfg.Site.Root, "refs.bib"), refs)
	write(t, filepath.Join(cfg.Site.ContentDir, "a-broken.md"), "```{bibliography}\n@misc{broken, title = {x\n```\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "b-inline.md"), "```{bibliography}\n@misc{m, title = {Tool}}\n```\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "c-file.md"), "```{bibliography} /refs.bib\n```\n")

	g := New(cfg)
	for range 2 {
		err := g.Build(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), "a-broken.md")
		require.NotContains(t, err.Error(), "b-inline.md")
		require.NotContains(t, err.Error(), "c-file.md")

		require.Contains(t, read(t, filepath.Join(cfg.Site.OutputDir, "b-inline.html")), `<li id="m">`)
		require.Contains(t, read(t, filepath.Join(cfg.Site.OutputDir, "c-file.html")), `<li id="knuth84">`)
	}
}

func TestBuild_TemplateOverridesAndFrontmatterTemplate(t *testing.T) {
	cfg := newSite(t, "site: {title: Lab}\n")
	write(t, filepath.Join(cfg.Site.TemplatesDir, "page.html"), `custom:{{.page.Title}}`)
	write(t, filepath.Join(cfg.Site.TemplatesDir, "note.html"), `note:{{.page.Params.mood}}|{{.page.Content}}`)
	write(t, filepath.Join(cfg.Site.ContentDir, "a.md"), "---\ntitle: A\n---\nbody\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "b.md"), "---\ntemplate: note\nmood: calm\n---\nhello\n")

	require.NoError(t, New(cfg).Build(context.Background()))
	require.Equal(t, "custom:A", read(t, filepath.Join(cfg.Site.OutputDir, "a.html")))
	require.Equal(t, "note:calm|<p>hello</p>\n", read(t, filepath.Join(cfg.Site.OutputDir, "b.html")))
}

func TestBuild_CanceledContext(t *testing.T) {
	cfg := newSite(t, "site: {title: Lab}\n")
	write(t, filepath.Join(cfg.Site.ContentDir, "a.md"), "a\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, New(cfg).Build(ctx), context.Canceled)
}

func TestGenerator_WithoutEngine(t *testing.T) {
	cfg := newSite(t, "publications: {src: refs.bib}\n")
	write(t, filepath.Join(cfg.Site.Root, "refs.bib"), refs)

	g := New(cfg, WithEngine(nil))
	require.NoError(t, g.Init())
	require.Nil(t, g.Context().Publications())
	require.NotNil(t, g.Context()[KeySite])
}

func TestGenerator_TemplateLookup(t *testing.T) {
	cfg := newSite(t, "site: {title: Lab}\n")
	g := New(cfg)

	_, err := g.Template("bibliography")
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/b", "absent"} {
		_, err := g.Template(name)
		require.True(t, derrors.IsCategory(err, derrors.CategoryTemplate), name)
	}

	write(t, filepath.Join(cfg.Site.TemplatesDir, "bad.html"), "{{.x")
	_, err = g.Template("bad")
	require.True(t, derrors.IsCategory(err, derrors.CategoryTemplate))
}

func TestGenerator_FilterTagAndRender(t *testing.T) {
	cfg := newSite(t, "publications: {src: refs.bib, split_by: tags}\n")
	write(t, filepath.Join(cfg.Site.Root, "refs.bib"), refs)
	g := New(cfg)
	require.NoError(t, g.Init())

	require.Error(t, g.FilterTag("missing"))
	require.NoError(t, g.FilterTag("journal"))
	require.Equal(t, []string{"knuth84"}, keys(g.Context().Publications()))

	var buf bytes.Buffer
	require.NoError(t, g.Render(&buf, "bibliography", nil))
	require.Contains(t, buf.String(), `<li id="knuth84">`)
	require.NotContains(t, buf.String(), "notes")
}

func keys(entries []publications.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}
