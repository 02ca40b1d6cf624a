// Package accent replaces accented Latin letters with their plain ASCII
// counterparts using a fixed substitution table.
//
// The table covers the French diacritics (acute, grave, circumflex, diaeresis
// and cedilla) in both cases. Substitution is literal and rune-for-rune: no
// Unicode normalization is applied, so decomposed forms (a base letter
// followed by a combining mark) pass through untouched.
package accent

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Pair is a single entry of the substitution table.
type Pair struct {
	From rune
	To   rune
}

// table lists every substitution in a fixed order. Entries are disjoint single
// runes, so the order never affects the result.
var table = []Pair{
	{'é', 'e'}, {'è', 'e'}, {'ê', 'e'}, {'ë', 'e'},
	{'à', 'a'}, {'â', 'a'}, {'ä', 'a'},
	{'ù', 'u'}, {'û', 'u'}, {'ü', 'u'},
	{'ô', 'o'}, {'ö', 'o'},
	{'î', 'i'}, {'ï', 'i'},
	{'ç', 'c'},
	{'É', 'E'}, {'È', 'E'}, {'Ê', 'E'}, {'Ë', 'E'},
	{'À', 'A'}, {'Â', 'A'}, {'Ä', 'A'},
	{'Ù', 'U'}, {'Û', 'U'}, {'Ü', 'U'},
	{'Ô', 'O'}, {'Ö', 'O'},
	{'Î', 'I'}, {'Ï', 'I'},
	{'Ç', 'C'},
}

// lookup is built once from table.
var lookup = func() map[rune]rune {
	m := make(map[rune]rune, len(table))
	for _, p := range table {
		m[p.From] = p.To
	}
	return m
}()

// Table returns a copy of the substitution table in its enumerated order.
func Table() []Pair {
	out := make([]Pair, len(table))
	copy(out, table)
	return out
}

// IsAccented reports whether r has an entry in the substitution table.
func IsAccented(r rune) bool {
	_, ok := lookup[r]
	return ok
}

// replace maps a rune through the table, leaving unknown runes as they are.
func replace(r rune) rune {
	if plain, ok := lookup[r]; ok {
		return plain
	}
	return r
}

// NewTransformer returns a transformer applying the substitution table.
// Invalid UTF-8 in the input is emitted as U+FFFD, so callers that need a
// byte-exact passthrough should validate the input first.
func NewTransformer() transform.Transformer {
	return runes.Map(replace)
}

// Strip returns s with every accented character of the table replaced by its
// plain equivalent. All other characters are left unchanged. Strip is
// idempotent.
func Strip(s string) string {
	if strings.IndexFunc(s, IsAccented) < 0 {
		return s
	}
	out, _, err := transform.String(NewTransformer(), s)
	if err != nil {
		return strings.Map(replace, s)
	}
	return out
}

// Count returns the number of characters in s that Strip would replace.
func Count(s string) int {
	n := 0
	for _, r := range s {
		if IsAccented(r) {
			n++
		}
	}
	return n
}
