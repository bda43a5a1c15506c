package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeySource     = "source"
	KeyTemplate   = "template"
	KeyDocument   = "document"
	KeyTag        = "tag"
	KeyEntries    = "entries"
	KeyStyle      = "style"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Source(s string) slog.Attr        { return slog.String(KeySource, s) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func Document(path string) slog.Attr   { return slog.String(KeyDocument, path) }
func Tag(tag string) slog.Attr         { return slog.String(KeyTag, tag) }
func Entries(n int) slog.Attr          { return slog.Int(KeyEntries, n) }
func Style(name string) slog.Attr      { return slog.String(KeyStyle, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
