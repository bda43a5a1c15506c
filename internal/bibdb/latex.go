package bibdb

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Combining marks for the LaTeX accent commands.
var accents = map[string]rune{
	`"`: '\u0308',
	`'`: '\u0301',
	"`": '\u0300',
	"^": '\u0302',
	"~": '\u0303',
	"=": '\u0304',
	".": '\u0307',
	"u": '\u0306',
	"v": '\u030c',
	"H": '\u030b',
	"r": '\u030a',
	"c": '\u0327',
	"k": '\u0328',
	"d": '\u0323',
	"b": '\u0331',
}

var specials = map[string]string{
	"ss": "ß",
	"o":  "ø",
	"O":  "Ø",
	"aa": "å",
	"AA": "Å",
	"ae": "æ",
	"AE": "Æ",
	"oe": "œ",
	"OE": "Œ",
	"l":  "ł",
	"L":  "Ł",
	"i":  "ı",
	"j":  "ȷ",
}

// Clean converts a LaTeX-flavoured BibTeX value into display text: braces
// are dropped, escapes and accent macros are resolved, `--`/`---` become
// dashes and `~` a non-breaking space. The result is NFC normalized.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(r); i++ {
		switch c := r[i]; c {
		case '{', '}':
		case '~':
			b.WriteRune('\u00a0')
		case '-':
			switch {
			case i+2 < len(r) && r[i+1] == '-' && r[i+2] == '-':
				b.WriteRune('\u2014')
				i += 2
			case i+1 < len(r) && r[i+1] == '-':
				b.WriteRune('\u2013')
				i++
			default:
				b.WriteRune('-')
			}
		case '\\':
			i = command(r, i, &b)
		case '\n', '\t', '\r':
			b.WriteRune(' ')
		default:
			b.WriteRune(c)
		}
	}
	return norm.NFC.String(collapseSpaces(b.String()))
}

// command consumes the control sequence starting at r[i] and returns the
// index of its last consumed rune.
func command(r []rune, i int, b *strings.Builder) int {
	if i+1 >= len(r) {
		b.WriteRune('\\')
		return i
	}
	next := r[i+1]
	if strings.ContainsRune("&%$#_{} \\", next) {
		if next == '\\' {
			b.WriteRune(' ')
		} else {
			b.WriteRune(next)
		}
		return i + 1
	}
	if mark, ok := accents[string(next)]; ok && !unicode.IsLetter(next) {
		return accent(r, i+2, mark, b)
	}
	if !unicode.IsLetter(next) {
		return i + 1
	}

	j := i + 1
	for j < len(r) && unicode.IsLetter(r[j]) {
		j++
	}
	name := string(r[i+1 : j])
	if mark, ok := accents[name]; ok && len(name) == 1 {
		return accent(r, j, mark, b)
	}
	if sp, ok := specials[name]; ok {
		b.WriteString(sp)
	}
	// Unknown commands (\emph, \textbf, ...) vanish; their argument stays.
	if j < len(r) && r[j] == ' ' {
		return j
	}
	return j - 1
}

// accent writes the letter at or after r[j] followed by mark.
func accent(r []rune, j int, mark rune, b *strings.Builder) int {
	for j < len(r) && (r[j] == '{' || r[j] == ' ') {
		j++
	}
	if j >= len(r) {
		return j - 1
	}
	base := r[j]
	if base == '\\' && j+1 < len(r) && (r[j+1] == 'i' || r[j+1] == 'j') {
		j++
		base = r[j]
	}
	b.WriteRune(base)
	b.WriteRune(mark)
	return j
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' '
	}), " ")
}
