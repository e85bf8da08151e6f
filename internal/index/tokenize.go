package index

import (
	"strings"
	"unicode"
)

// Field names used throughout the engine for highlights and field documents
const (
	FieldTitle    = "title"
	FieldProblem  = "problem"
	FieldSolution = "solution"
	FieldTags     = "tags"
)

// Normalize lowercases text and replaces every non-alphanumeric rune with a
// space. Applied identically to indexed fields and to queries, so a query can
// never carry operators or quoting into any downstream component.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits text into normalized terms. Purely punctuation or empty
// input yields no tokens.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// TokenSet returns the token multiset of the given text
func TokenSet(s string) map[string]int {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]int, len(tokens))
	for _, t := range tokens {
		set[t]++
	}
	return set
}
