package style

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docbib/internal/bibdb"
)

// CustomStyleFile is the file looked up in the plugin search path.
const CustomStyleFile = "bibstyle.yaml"

var (
	// ErrCustomStyleNotFound means the plugin path holds no custom style.
	ErrCustomStyleNotFound = errors.New("custom style not found")
	// ErrInvalidCustomStyle means the custom style file exists but cannot be used.
	ErrInvalidCustomStyle = errors.New("invalid custom style")
)

// customStyleFile is the YAML shape of a custom style. Templates are
// html/template bodies keyed by entry type; "default" covers other types.
type customStyleFile struct {
	Name      string            `yaml:"name"`
	Templates map[string]string `yaml:"templates"`
}

// Custom is a style defined by per-type templates.
type Custom struct {
	name      string
	opts      Options
	dec       decorator
	templates map[string]*template.Template
	fallback  *Plain
}

// LoadCustom loads the custom style from pluginPath.
func LoadCustom(pluginPath string, opts Options, decorate bool) (*Custom, error) {
	path := filepath.Join(pluginPath, CustomStyleFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCustomStyleNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCustomStyle, path, err)
	}

	var file customStyleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCustomStyle, path, err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("%w: %s: no templates defined", ErrInvalidCustomStyle, path)
	}

	c := &Custom{
		name:      file.Name,
		opts:      opts,
		dec:       decorator(decorate),
		templates: make(map[string]*template.Template, len(file.Templates)),
		fallback:  NewPlain(opts, decorate),
	}
	if c.name == "" {
		c.name = "custom"
	}
	for kind, body := range file.Templates {
		tpl, err := template.New(kind).Option("missingkey=zero").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: template %q: %v", ErrInvalidCustomStyle, path, kind, err)
		}
		c.templates[strings.ToLower(kind)] = tpl
	}
	return c, nil
}

// Name implements Style.
func (c *Custom) Name() string { return c.name }

// FormatEntries implements Style. Entry types without a template (and no
// "default" template) are formatted with the plain style; a template that
// fails to execute also falls back to plain for that entry.
func (c *Custom) FormatEntries(entries []*bibdb.Entry) []Formatted {
	sorted := append([]*bibdb.Entry(nil), entries...)
	sortEntries(sorted, c.opts.SortingStyle)

	out := make([]Formatted, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, Formatted{Key: e.Key, Text: c.format(e)})
	}
	return out
}

func (c *Custom) format(e *bibdb.Entry) string {
	tpl, ok := c.templates[e.Type]
	if !ok {
		tpl, ok = c.templates["default"]
	}
	if !ok {
		return c.fallback.Format(e)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, entryView{e: e, opts: c.opts}); err != nil {
		return c.fallback.Format(e)
	}
	return c.dec.wrap(e.Type, strings.TrimSpace(buf.String()))
}

// entryView is the data handed to custom style templates. Values are plain
// text; html/template escapes them.
type entryView struct {
	e    *bibdb.Entry
	opts Options
}

func (v entryView) Key() string  { return v.e.Key }
func (v entryView) Type() string { return v.e.Type }
func (v entryView) Year() string { return bibdb.Clean(v.e.Field("year")) }

// Title returns the capitalized, cleaned title.
func (v entryView) Title() string {
	return bibdb.Clean(capitalize(v.e.Field("title")))
}

// Field returns the cleaned value of any field.
func (v entryView) Field(name string) string { return bibdb.Clean(v.e.Field(name)) }

// Has reports whether a field is present.
func (v entryView) Has(name string) bool { return v.e.Has(name) }

// Names formats a person field with the style's name options.
func (v entryView) Names(role string) string {
	return formatNameList(v.e.Persons(role), v.opts)
}
