package directive

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docbib/internal/errors"
)

// Directive option names.
const (
	OptTemplate        = "template"
	OptOptions         = "options"
	OptClass           = "class"
	OptFilterTag       = "filter_tag"
	OptStyleArgs       = "pybtex_style_args"
	OptSortingStyle    = "sorting_style"
	OptAbbreviateNames = "abbreviate_names"
	OptNameStyle       = "name_style"
)

type options struct {
	template        string
	templateOptions map[string]any
	classes         []string
	filterTag       string
	styleArgs       map[string]any
}

func parseOptions(raw map[string]string, defaultTemplate string) (options, error) {
	opts := options{template: defaultTemplate, styleArgs: map[string]any{}}

	for name, value := range raw {
		switch name {
		case OptTemplate, OptFilterTag, OptSortingStyle, OptNameStyle, OptAbbreviateNames:
		case OptOptions:
			m, err := parseLiteral(name, value)
			if err != nil {
				return opts, err
			}
			opts.templateOptions = m
		case OptClass:
			classes, err := parseClasses(value)
			if err != nil {
				return opts, err
			}
			opts.classes = classes
		case OptStyleArgs:
			m, err := parseLiteral(name, value)
			if err != nil {
				return opts, err
			}
			for k, v := range m {
				opts.styleArgs[k] = v
			}
		default:
			return opts, derrors.DirectiveInput(fmt.Sprintf("unknown option %q", name))
		}
	}

	// Shorthands override pybtex_style_args whatever their position.
	if v, ok := raw[OptTemplate]; ok {
		opts.template = strings.TrimSpace(v)
	}
	if v, ok := raw[OptFilterTag]; ok {
		opts.filterTag = strings.TrimSpace(v)
	}
	if v, ok := raw[OptSortingStyle]; ok {
		opts.styleArgs[OptSortingStyle] = strings.TrimSpace(v)
	}
	if v, ok := raw[OptNameStyle]; ok {
		opts.styleArgs[OptNameStyle] = strings.TrimSpace(v)
	}
	if v, ok := raw[OptAbbreviateNames]; ok {
		switch strings.TrimSpace(v) {
		case "True":
			opts.styleArgs[OptAbbreviateNames] = true
		case "False":
			opts.styleArgs[OptAbbreviateNames] = false
		default:
			return opts, derrors.DirectiveInput(fmt.Sprintf("option %q must be True or False, got %q", OptAbbreviateNames, v))
		}
	}
	if opts.template == "" {
		return opts, derrors.DirectiveInput("empty template name")
	}
	return opts, nil
}

// parseLiteral reads a mapping literal such as
// `{'sorting_style': 'author_year_title', 'abbreviate_names': False}`.
func parseLiteral(name, value string) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal([]byte(value), &m); err != nil {
		return nil, derrors.DirectiveInput(fmt.Sprintf("option %q is not a valid mapping: %v", name, err))
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// parseClasses splits a class list and normalizes each name to lower-case
// words joined by hyphens.
func parseClasses(value string) ([]string, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, derrors.DirectiveInput(fmt.Sprintf("option %q needs at least one class name", OptClass))
	}
	classes := make([]string, 0, len(fields))
	for _, f := range fields {
		c := normalizeClass(f)
		if c == "" {
			return nil, derrors.DirectiveInput(fmt.Sprintf("invalid class name %q", f))
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func normalizeClass(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	out := b.String()
	// Class names start with a letter.
	return strings.TrimLeft(out, "0123456789-")
}
