package bibdb

import (
	"strings"
	"unicode"
)

// Person is a BibTeX name split into its four parts. Each part holds the raw
// (LaTeX) words of that part.
type Person struct {
	First   []string
	Prelast []string // "von" part
	Last    []string
	Lineage []string // "Jr." part
}

// String renders the person in the BibTeX "von Last, Jr, First" form.
func (p Person) String() string {
	s := strings.Join(append(append([]string{}, p.Prelast...), p.Last...), " ")
	if len(p.Lineage) > 0 {
		s += ", " + strings.Join(p.Lineage, " ")
	}
	if len(p.First) > 0 {
		s += ", " + strings.Join(p.First, " ")
	}
	return s
}

// LastNames returns the cleaned "von Last" part, used for sorting.
func (p Person) LastNames() string {
	return Clean(strings.Join(append(append([]string{}, p.Prelast...), p.Last...), " "))
}

// ParseNames splits a person field on top-level "and" and parses each name.
func ParseNames(field string) []Person {
	var (
		people []Person
		cur    []string
	)
	for _, tok := range tokenize(field) {
		if strings.EqualFold(tok, "and") {
			if len(cur) > 0 {
				people = append(people, parsePerson(cur))
			}
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 {
		people = append(people, parsePerson(cur))
	}
	return people
}

// tokenize splits on whitespace outside braces. Top-level commas become
// separate "," tokens.
func tokenize(s string) []string {
	var (
		tokens []string
		b      strings.Builder
		depth  int
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '{':
			depth++
			b.WriteRune(r)
		case r == '}':
			if depth > 0 {
				depth--
			}
			b.WriteRune(r)
		case depth == 0 && r == ',':
			flush()
			tokens = append(tokens, ",")
		case depth == 0 && unicode.IsSpace(r):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func parsePerson(tokens []string) Person {
	var parts [][]string
	var cur []string
	for _, t := range tokens {
		if t == "," {
			parts = append(parts, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	parts = append(parts, cur)

	switch len(parts) {
	case 1:
		return parseFirstVonLast(parts[0])
	case 2:
		p := parseVonLast(parts[0])
		p.First = parts[1]
		return p
	default:
		p := parseVonLast(parts[0])
		p.Lineage = parts[1]
		p.First = joinParts(parts[2:])
		return p
	}
}

// parseFirstVonLast handles "First von Last".
func parseFirstVonLast(words []string) Person {
	n := len(words)
	if n == 0 {
		return Person{}
	}
	if n == 1 {
		return Person{Last: words}
	}
	first, last := -1, -1
	for i := 0; i < n-1; i++ {
		if isLowerWord(words[i]) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return Person{First: words[:n-1], Last: words[n-1:]}
	}
	return Person{First: words[:first], Prelast: words[first : last+1], Last: words[last+1:]}
}

// parseVonLast handles the "von Last" part before the first comma.
func parseVonLast(words []string) Person {
	n := len(words)
	last := -1
	for i := 0; i < n-1; i++ {
		if isLowerWord(words[i]) {
			last = i
		}
	}
	if last < 0 {
		return Person{Last: words}
	}
	return Person{Prelast: words[:last+1], Last: words[last+1:]}
}

func joinParts(parts [][]string) []string {
	var out []string
	for i, p := range parts {
		if i > 0 && len(p) > 0 {
			p = append([]string{}, p...)
			p[0] = "," + p[0]
		}
		out = append(out, p...)
	}
	return out
}

// isLowerWord reports whether a word starts with a lower case letter.
// Words starting with a brace group are caseless and count as upper case.
func isLowerWord(w string) bool {
	if strings.HasPrefix(w, "{") && !strings.HasPrefix(w, `{\`) {
		return false
	}
	for _, r := range Clean(w) {
		if unicode.IsLetter(r) {
			return unicode.IsLower(r)
		}
	}
	return false
}
