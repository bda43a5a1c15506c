package style

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Sorting styles.
const (
	SortNone            = "none"
	SortAuthorYearTitle = "author_year_title"
)

// Name styles.
const (
	NamePlain     = "plain"
	NameLastFirst = "lastfirst"
)

// Options are the style arguments shared by every style.
type Options struct {
	SortingStyle    string
	NameStyle       string
	AbbreviateNames bool
	// Ignored lists accepted keys that no built-in style uses, sorted.
	Ignored []string
}

// DefaultOptions returns unsorted, unabbreviated "First Last" output.
func DefaultOptions() Options {
	return Options{SortingStyle: SortNone, NameStyle: NamePlain}
}

// ParseOptions reads the sorting_style, name_style and abbreviate_names
// style arguments. Unknown values are errors. Other keys, such as
// label_style or min_crossrefs, are accepted and listed in Ignored.
func ParseOptions(args map[string]any) (Options, error) {
	opts := DefaultOptions()
	for key, raw := range args {
		switch key {
		case "sorting_style":
			v, err := stringArg(key, raw)
			if err != nil {
				return opts, err
			}
			switch v {
			case SortNone, SortAuthorYearTitle:
				opts.SortingStyle = v
			default:
				return opts, fmt.Errorf("unknown sorting_style %q", v)
			}
		case "name_style":
			v, err := stringArg(key, raw)
			if err != nil {
				return opts, err
			}
			switch v {
			case NamePlain, NameLastFirst:
				opts.NameStyle = v
			default:
				return opts, fmt.Errorf("unknown name_style %q", v)
			}
		case "abbreviate_names":
			v, err := boolArg(key, raw)
			if err != nil {
				return opts, err
			}
			opts.AbbreviateNames = v
		default:
			opts.Ignored = append(opts.Ignored, key)
		}
	}
	slices.Sort(opts.Ignored)
	return opts, nil
}

func stringArg(key string, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case nil:
		return "", fmt.Errorf("%s: missing value", key)
	default:
		return "", fmt.Errorf("%s: expected string, got %T", key, raw)
	}
}

func boolArg(key string, raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s: %w", key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s: expected boolean, got %T", key, raw)
	}
}
