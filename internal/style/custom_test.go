package style

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

func writeStyle(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CustomStyleFile), []byte(body), 0o600))
	return dir
}

func TestLoadCustom_FormatsWithTemplates(t *testing.T) {
	dir := writeStyle(t, `
name: compact
templates:
  article: '{{.Names "author"}} ({{.Year}}) <strong>{{.Title}}</strong>{{if .Has "journal"}}, <em>{{.Field "journal"}}</em>{{end}}'
  default: '{{.Title}}'
`)
	c, err := LoadCustom(dir, DefaultOptions(), false)
	require.NoError(t, err)
	require.Equal(t, "compact", c.Name())

	out := c.FormatEntries([]*bibdb.Entry{
		entry("article", "a", map[string]string{"author": "Ada Lovelace", "year": "1843", "title": "Notes \\& Sketches", "journal": "Memoirs"}),
		entry("book", "b", map[string]string{"title": "Some Book"}),
	})
	require.Len(t, out, 2)
	require.Equal(t, "Ada Lovelace (1843) <strong>Notes &amp; sketches</strong>, <em>Memoirs</em>", out[0].Text)
	require.Equal(t, "Some book", out[1].Text)
}

func TestLoadCustom_DecoratesWholeEntry(t *testing.T) {
	dir := writeStyle(t, "templates:\n  misc: '{{.Key}}'\n")
	c, err := LoadCustom(dir, DefaultOptions(), true)
	require.NoError(t, err)
	require.Equal(t, "custom", c.Name())

	out := c.FormatEntries([]*bibdb.Entry{entry("misc", "k1", map[string]string{})})
	require.Equal(t, "<:bib-misc>k1</:bib-misc>", out[0].Text)
}

func TestLoadCustom_MissingTypeFallsBackToPlain(t *testing.T) {
	dir := writeStyle(t, "templates:\n  article: '{{.Key}}'\n")
	c, err := LoadCustom(dir, DefaultOptions(), false)
	require.NoError(t, err)

	out := c.FormatEntries([]*bibdb.Entry{entry("misc", "m", map[string]string{"title": "Tool"})})
	require.Equal(t, "Tool.", out[0].Text)
}

func TestLoadCustom_Errors(t *testing.T) {
	_, err := LoadCustom(t.TempDir(), DefaultOptions(), false)
	require.True(t, errors.Is(err, ErrCustomStyleNotFound))

	_, err = LoadCustom(writeStyle(t, "templates: [not, a, map]"), DefaultOptions(), false)
	require.True(t, errors.Is(err, ErrInvalidCustomStyle))

	_, err = LoadCustom(writeStyle(t, "name: empty\n"), DefaultOptions(), false)
	require.True(t, errors.Is(err, ErrInvalidCustomStyle))

	_, err = LoadCustom(writeStyle(t, "templates:\n  misc: '{{.Key'\n"), DefaultOptions(), false)
	require.True(t, errors.Is(err, ErrInvalidCustomStyle))
}
