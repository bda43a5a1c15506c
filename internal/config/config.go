package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docbib/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Publications PublicationsConfig `yaml:"publications"`

	// path is the file the configuration was loaded from; relative
	// directories are resolved against its directory.
	path string `yaml:"-"`
}

// SiteConfig describes the host generator: where content lives and where
// rendered pages go.
type SiteConfig struct {
	Title           string         `yaml:"title"`
	Root            string         `yaml:"root,omitempty"`
	ContentDir      string         `yaml:"content_dir,omitempty"`
	OutputDir       string         `yaml:"output_dir,omitempty"`
	TemplatesDir    string         `yaml:"templates_dir,omitempty"`
	DirectTemplates []string       `yaml:"direct_templates,omitempty"`
	Params          map[string]any `yaml:"params,omitempty"`
}

// PublicationsConfig holds the bibliography settings consumed by the
// context populator and the bibliography directive.
type PublicationsConfig struct {
	// Src lists the BibTeX files loaded on generator init. A single string is accepted.
	Src StringList `yaml:"src,omitempty"`
	// SplitBy names the BibTeX field used to group entries. Empty disables grouping.
	SplitBy string `yaml:"split_by,omitempty"`
	// UntaggedTitle is the group label for entries without a SplitBy value.
	UntaggedTitle   string         `yaml:"untagged_title,omitempty"`
	DecorateHTML    bool           `yaml:"decorate_html,omitempty"`
	StyleArgs       map[string]any `yaml:"style_args,omitempty"`
	CustomStyle     bool           `yaml:"custom_style,omitempty"`
	DefaultTemplate string         `yaml:"default_template,omitempty"`
	PluginPath      string         `yaml:"plugin_path,omitempty"`
}

// StringList decodes either a YAML scalar or a sequence of scalars.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		if single == "" {
			*s = nil
			return nil
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

// Default values applied after loading.
const (
	DefaultTemplate     = "bibliography"
	DefaultPluginPath   = "plugins"
	DefaultContentDir   = "content"
	DefaultOutputDir    = "public"
	DefaultTemplatesDir = "templates"
	DefaultTitle        = "Publications"
)

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, derrors.ConfigInvalid(configPath, fmt.Errorf("read config file: %w", err))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, derrors.ConfigInvalid(configPath, err)
	}
	cfg.path = configPath
	cfg.resolvePaths(filepath.Dir(configPath))

	return cfg, nil
}

// Parse decodes YAML configuration, expanding environment variables and
// applying defaults. Relative paths are left untouched.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = DefaultTitle
	}
	if c.Site.Root == "" {
		c.Site.Root = "."
	}
	if c.Site.ContentDir == "" {
		c.Site.ContentDir = DefaultContentDir
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = DefaultOutputDir
	}
	if c.Site.TemplatesDir == "" {
		c.Site.TemplatesDir = DefaultTemplatesDir
	}
	if c.Publications.DefaultTemplate == "" {
		c.Publications.DefaultTemplate = DefaultTemplate
	}
	if c.Publications.PluginPath == "" {
		c.Publications.PluginPath = DefaultPluginPath
	}
}

// resolvePaths anchors relative site and bibliography paths at base.
func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Site.Root = abs(c.Site.Root)
	c.Site.ContentDir = abs(c.Site.ContentDir)
	c.Site.OutputDir = abs(c.Site.OutputDir)
	c.Site.TemplatesDir = abs(c.Site.TemplatesDir)
	c.Publications.PluginPath = abs(c.Publications.PluginPath)
	for i, src := range c.Publications.Src {
		c.Publications.Src[i] = abs(src)
	}
}

// Validate checks the configuration for settings that can never work.
func (c *Config) Validate() error {
	for i, src := range c.Publications.Src {
		if src == "" {
			return derrors.ValidationFailed(fmt.Sprintf("publications.src[%d]", i), "empty path")
		}
	}
	for i, name := range c.Site.DirectTemplates {
		if name == "" {
			return derrors.ValidationFailed(fmt.Sprintf("site.direct_templates[%d]", i), "empty template name")
		}
	}
	if c.Publications.UntaggedTitle != "" && c.Publications.SplitBy == "" {
		return derrors.ValidationFailed("publications.untagged_title", "requires publications.split_by")
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.New(derrors.CategoryConfig, derrors.SeverityFatal,
			"configuration file already exists (use --force to overwrite)").WithContext("path", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return derrors.FileSystem("write config", err)
	}
	return nil
}

const exampleConfig = `# docbib configuration
site:
  title: Publications
  root: .
  content_dir: content
  output_dir: public
  templates_dir: templates
  direct_templates:
    - publications

publications:
  # A single path or a list of BibTeX files.
  src:
    - content/refs.bib
  # BibTeX field used to group entries (comma separated values).
  split_by: tags
  # Group label for entries without tags.
  untagged_title: Others
  decorate_html: false
  style_args:
    sorting_style: author_year_title
    name_style: plain
    abbreviate_names: false
  custom_style: false
  default_template: bibliography
  plugin_path: plugins
`
