package site

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	derrors "git.home.luguber.info/inful/docbib/internal/errors"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

const templateExt = ".html"

// templateSet loads templates by name from a directory, falling back to the
// built-in set. Parsed templates are cached until reset.
type templateSet struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*template.Template
}

func newTemplateSet(dir string) *templateSet {
	return &templateSet{dir: dir, cache: map[string]*template.Template{}}
}

func (s *templateSet) lookup(name string) (*template.Template, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, derrors.TemplateNotFound(name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tmpl, ok := s.cache[name]; ok {
		return tmpl, nil
	}

	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Parse(string(data))
	if err != nil {
		return nil, derrors.TemplateRender(name, fmt.Errorf("parse: %w", err))
	}
	s.cache[name] = tmpl
	return tmpl, nil
}

func (s *templateSet) read(name string) ([]byte, error) {
	file := name + templateExt
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, file))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.FileSystem("read template", err).WithContext("template", name)
		}
	}
	data, err := builtinTemplates.ReadFile("templates/" + file)
	if err != nil {
		return nil, derrors.TemplateNotFound(name)
	}
	return data, nil
}

func (s *templateSet) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
}
