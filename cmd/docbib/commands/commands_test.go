package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docbib/internal/errors"
)

const refs = `
@article{knuth84,
  author = {Donald E. Knuth},
  title = {Literate Programming},
  journal = {The Computer Journal},
  year = {1984},
  tags = {journal, classic}
}
@misc{notes,
  title = {Loose Notes},
  year = {2020}
}
`

const cfgYAML = `
site:
  title: Lab
  direct_templates: [publications]
publications:
  src: refs.bib
  split_by: tags
  untagged_title: Other
`

func setup(t *testing.T) (*CLI, *Global, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs.bib"), []byte(refs), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docbib.yaml"), []byte(cfgYAML), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "index.md"),
		[]byte("---\ntitle: Home\n---\n```{bibliography} /refs.bib\n:filter_tag: classic\n```\n"), 0o600))

	var out bytes.Buffer
	return &CLI{Config: filepath.Join(dir, "docbib.yaml")},
		&Global{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), Out: &out},
		&out
}

func TestBuildCmd(t *testing.T) {
	root, g, _ := setup(t)
	out := filepath.Join(t.TempDir(), "site")
	metricsFile := filepath.Join(t.TempDir(), "docbib.prom")

	require.NoError(t, (&BuildCmd{Output: out, MetricsFile: metricsFile}).Run(g, root))

	require.FileExists(t, filepath.Join(out, "index.html"))
	require.FileExists(t, filepath.Join(out, "publications.html"))
	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), `id="knuth84"`)
	require.NotContains(t, string(index), `id="notes"`)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `docbib_document_results_total{result="success"} 1`)
	require.Contains(t, string(prom), `docbib_directive_results_total{result="success"} 1`)
}

func TestBuildCmd_MissingConfig(t *testing.T) {
	_, g, _ := setup(t)
	err := (&BuildCmd{}).Run(g, &CLI{Config: filepath.Join(t.TempDir(), "absent.yaml")})
	require.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
	require.Equal(t, 7, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestListCmd(t *testing.T) {
	root, g, out := setup(t)
	require.NoError(t, (&ListCmd{}).Run(g, root))
	require.Contains(t, out.String(), "KEY")
	require.Regexp(t, `knuth84\s+article\s+1984\s+classic, journal`, out.String())
	require.Regexp(t, `notes\s+misc\s+2020\s+Other`, out.String())

	out.Reset()
	require.NoError(t, (&ListCmd{Tag: "journal"}).Run(g, root))
	require.Contains(t, out.String(), "knuth84")
	require.NotContains(t, out.String(), "notes")

	require.Error(t, (&ListCmd{Tag: "nope"}).Run(g, root))
}

func TestRenderCmd(t *testing.T) {
	root, g, out := setup(t)
	require.NoError(t, (&RenderCmd{Template: "bibliography", FilterTag: "Other"}).Run(g, root))
	require.Contains(t, out.String(), `<li id="notes">`)
	require.NotContains(t, out.String(), "knuth84")

	err := (&RenderCmd{Template: "absent"}).Run(g, root)
	require.True(t, derrors.IsCategory(err, derrors.CategoryTemplate))
}

func TestInitCmd(t *testing.T) {
	_, g, out := setup(t)
	root := &CLI{Config: filepath.Join(t.TempDir(), "docbib.yaml")}

	require.NoError(t, (&InitCmd{}).Run(g, root))
	require.FileExists(t, root.Config)
	require.Contains(t, out.String(), "initialized successfully")

	require.Error(t, (&InitCmd{}).Run(g, root))
	require.NoError(t, (&InitCmd{Force: true}).Run(g, root))
}
