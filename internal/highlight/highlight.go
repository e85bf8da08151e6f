// Package highlight extracts matched term spans from entry fields for display.
// Spans are computed only for the final top results, never for the whole
// candidate pool.
package highlight

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/kbsearch-mcp/internal/index"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// MaxSpansPerField bounds highlight output for fields that repeat a term
const MaxSpansPerField = 5

// Extract returns highlighted spans for the query terms within the fields
// that contributed to the match. Offsets refer to the original field text.
// Fields that did not contribute produce no highlights.
func Extract(query string, entry *types.KBEntry, fields []string) []types.Highlight {
	tokens := index.Tokenize(query)
	if len(tokens) == 0 || entry == nil {
		return nil
	}

	var out []types.Highlight
	for _, field := range fields {
		switch field {
		case index.FieldTitle:
			out = append(out, fieldSpans(field, entry.Title, tokens)...)
		case index.FieldProblem:
			out = append(out, fieldSpans(field, entry.Problem, tokens)...)
		case index.FieldSolution:
			out = append(out, fieldSpans(field, entry.Solution, tokens)...)
		case index.FieldTags:
			out = append(out, tagSpans(entry.Tags, tokens)...)
		}
	}
	return out
}

// fieldSpans finds whole-word occurrences of each token within text,
// case-insensitively, and returns them in ascending offset order. Matching
// walks the original text rune by rune; lowering a copy and byte-indexing it
// would drift whenever a rune's lowercase form has a different UTF-8 length.
func fieldSpans(field, text string, tokens []string) []types.Highlight {
	if text == "" {
		return nil
	}

	var spans []types.Highlight
	for _, token := range tokens {
		from := 0
		hits := 0
		for hits < MaxSpansPerField && from < len(text) {
			start, end := foldIndex(text, token, from)
			if start < 0 {
				break
			}
			if wordBoundary(text, start, end) {
				spans = append(spans, types.Highlight{
					Field: field,
					Start: start,
					End:   end,
					Text:  text[start:end],
				})
				hits++
			}
			_, size := utf8.DecodeRuneInString(text[start:])
			from = start + size
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
	return dedupeSpans(spans)
}

// tagSpans highlights whole tags containing a query token
func tagSpans(tags, tokens []string) []types.Highlight {
	var spans []types.Highlight
	for _, tag := range tags {
		tagTokens := index.TokenSet(tag)
		for _, token := range tokens {
			if tagTokens[token] > 0 {
				spans = append(spans, types.Highlight{
					Field: index.FieldTags,
					Start: 0,
					End:   len(tag),
					Text:  tag,
				})
				break
			}
		}
	}
	return spans
}

// foldIndex returns the byte span of the first case-insensitive occurrence
// of token in text at or after from, or (-1, -1) when there is none. Offsets
// index the original text.
func foldIndex(text, token string, from int) (int, int) {
	for i := from; i < len(text); {
		if n, ok := foldMatch(text[i:], token); ok {
			return i, i + n
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return -1, -1
}

// foldMatch reports whether text begins with token under rune-wise case
// folding, returning the matched byte length within text.
func foldMatch(text, token string) (int, bool) {
	n := 0
	for _, tr := range token {
		r, size := utf8.DecodeRuneInString(text[n:])
		if size == 0 {
			return 0, false
		}
		if r != tr && unicode.ToLower(r) != unicode.ToLower(tr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// wordBoundary reports whether text[start:end] sits on token boundaries
func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func dedupeSpans(spans []types.Highlight) []types.Highlight {
	if len(spans) < 2 {
		return spans
	}
	out := spans[:1]
	for _, s := range spans[1:] {
		last := out[len(out)-1]
		if s.Start == last.Start && s.End == last.End {
			continue
		}
		out = append(out, s)
	}
	return out
}
