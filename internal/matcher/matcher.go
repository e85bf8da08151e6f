package matcher

import (
	"sort"
	"strings"

	"github.com/dshills/kbsearch-mcp/internal/index"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// Similarity floors applied before a fuzzy candidate is emitted. These are
// matcher-internal and independent of the caller's score threshold.
const (
	// TokenSimilarityFloor is the minimum per-token similarity for a term
	// to count as a fuzzy hit.
	TokenSimilarityFloor = 0.6

	// EntrySimilarityFloor is the minimum aggregate similarity across all
	// query tokens for an entry to become a fuzzy candidate.
	EntrySimilarityFloor = 0.5
)

// Candidate is an unscored, provisional match between a query and an entry
type Candidate struct {
	EntryID  string
	Type     types.MatchType
	Strength float64  // Textual match strength in [0,1]
	Fields   []string // Fields that contributed to the match

	// Explanation is empty for local candidates; the semantic bridge
	// fills it in for semantic/ai candidates it contributes.
	Explanation string
}

// Match produces raw match candidates for a query against an index. When
// category is non-empty, candidates are restricted to entries of that
// category. An empty or punctuation-only query yields no candidates.
//
// An entry may appear under more than one match type (for example exact and
// tag); the ranker keeps the best-scoring one.
func Match(query string, ix *index.Index, category types.Category) []Candidate {
	normQuery := index.Normalize(query)
	tokens := strings.Fields(normQuery)
	if len(tokens) == 0 {
		return nil
	}

	var out []Candidate
	exactIDs := make(map[string]struct{})

	out = appendExact(out, exactIDs, normQuery, tokens, ix)
	out = appendTag(out, normQuery, ix)
	out = appendFuzzy(out, exactIDs, tokens, ix)
	out = appendCategory(out, tokens, ix)

	if category != "" {
		out = filterCategory(out, ix, category)
	}

	// Map iteration above is unordered; fix the output order
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryID != out[j].EntryID {
			return out[i].EntryID < out[j].EntryID
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// appendExact emits exact candidates: the whole normalized query appears as a
// contiguous substring of one field, or every query token appears somewhere
// in the entry.
func appendExact(out []Candidate, exactIDs map[string]struct{}, normQuery string, tokens []string, ix *index.Index) []Candidate {
	// A substring or all-token match implies every query token is indexed
	// for the entry, so the posting union of the tokens covers all
	// possible exact matches.
	for id := range postingUnion(tokens, ix) {
		doc := ix.Docs[id]

		var fields []string
		substring := false
		for _, name := range fieldNames {
			fd := doc.Fields[name]
			if fd.Norm == "" {
				continue
			}
			if containsPhrase(fd.Norm, normQuery) {
				substring = true
				fields = append(fields, name)
			}
		}

		if !substring {
			if !containsAllTokens(doc.Terms, tokens) {
				continue
			}
			fields = contributingFields(doc, tokens, nil)
		}

		exactIDs[id] = struct{}{}
		out = append(out, Candidate{
			EntryID:  id,
			Type:     types.MatchExact,
			Strength: 1,
			Fields:   fields,
		})
	}
	return out
}

// appendTag emits tag candidates when the whole normalized query matches one
// of an entry's tags, exactly or within the fuzzy floor. Per-token tag hits
// deliberately do not count: a multi-term query that merely shares one token
// with a tag is a text match, not a tag match.
func appendTag(out []Candidate, normQuery string, ix *index.Index) []Candidate {
	for id, doc := range ix.Docs {
		best := 0.0
		for _, tag := range doc.Tags {
			if tag == normQuery {
				best = 1
				break
			}
			if sim := Similarity(normQuery, tag); sim >= TokenSimilarityFloor && sim > best {
				best = sim
			}
		}
		if best > 0 {
			out = append(out, Candidate{
				EntryID:  id,
				Type:     types.MatchTag,
				Strength: best,
				Fields:   []string{index.FieldTags},
			})
		}
	}
	return out
}

// appendFuzzy emits fuzzy candidates based on per-token similarity. Entries
// that already matched exactly are skipped.
func appendFuzzy(out []Candidate, exactIDs map[string]struct{}, tokens []string, ix *index.Index) []Candidate {
	// bestSim[id][i] is the best similarity of query token i against any
	// term the entry contains.
	bestSim := make(map[string][]float64)
	fuzzyTerms := make(map[string]map[string]float64) // entry -> matched term -> sim

	record := func(id string, i int, term string, sim float64) {
		sims, ok := bestSim[id]
		if !ok {
			sims = make([]float64, len(tokens))
			bestSim[id] = sims
		}
		if sim > sims[i] {
			sims[i] = sim
		}
		terms, ok := fuzzyTerms[id]
		if !ok {
			terms = make(map[string]float64)
			fuzzyTerms[id] = terms
		}
		if sim > terms[term] {
			terms[term] = sim
		}
	}

	for i, token := range tokens {
		for id := range ix.Postings[token] {
			record(id, i, token, 1)
		}
		for _, term := range ix.FuzzyTerms(token) {
			sim := Similarity(token, term)
			if sim < TokenSimilarityFloor {
				continue
			}
			for id := range ix.Postings[term] {
				record(id, i, term, sim)
			}
		}
	}

	for id, sims := range bestSim {
		if _, ok := exactIDs[id]; ok {
			continue
		}
		total := 0.0
		for _, s := range sims {
			total += s
		}
		// Mean over all query tokens; unmatched tokens contribute zero,
		// so partial coverage lowers the strength proportionally.
		strength := total / float64(len(tokens))
		if strength < EntrySimilarityFloor {
			continue
		}
		out = append(out, Candidate{
			EntryID:  id,
			Type:     types.MatchFuzzy,
			Strength: strength,
			Fields:   contributingFields(ix.Docs[id], nil, fuzzyTerms[id]),
		})
	}
	return out
}

// appendCategory synthesizes category candidates for entries of a category
// named by a query token that produced no textual candidate.
func appendCategory(out []Candidate, tokens []string, ix *index.Index) []Candidate {
	var named []types.Category
	for _, token := range tokens {
		for _, c := range types.Categories {
			if token == index.Normalize(string(c)) {
				named = append(named, c)
			}
		}
	}
	if len(named) == 0 {
		return out
	}

	matched := make(map[string]struct{}, len(out))
	for _, c := range out {
		matched[c.EntryID] = struct{}{}
	}

	for id, doc := range ix.Docs {
		if _, ok := matched[id]; ok {
			continue
		}
		for _, c := range named {
			if doc.Entry.Category == c {
				out = append(out, Candidate{
					EntryID:  id,
					Type:     types.MatchCategory,
					Strength: 1,
				})
				break
			}
		}
	}
	return out
}

func filterCategory(cands []Candidate, ix *index.Index, category types.Category) []Candidate {
	kept := cands[:0]
	for _, c := range cands {
		if doc := ix.Docs[c.EntryID]; doc != nil && doc.Entry.Category == category {
			kept = append(kept, c)
		}
	}
	return kept
}

var fieldNames = []string{index.FieldTitle, index.FieldProblem, index.FieldSolution, index.FieldTags}

// containsPhrase reports whether phrase occurs in text on token boundaries
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; from <= len(text)-len(phrase); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if (start == 0 || text[start-1] == ' ') && (end == len(text) || text[end] == ' ') {
			return true
		}
		from = start + 1
	}
	return false
}

func containsAllTokens(terms map[string]int, tokens []string) bool {
	for _, t := range tokens {
		if terms[t] == 0 {
			return false
		}
	}
	return true
}

// postingUnion returns the IDs of entries containing at least one query token
func postingUnion(tokens []string, ix *index.Index) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, t := range tokens {
		for id := range ix.Postings[t] {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// contributingFields returns the fields containing any of the given exact
// tokens or fuzzy-matched terms, in canonical field order.
func contributingFields(doc *index.EntryDoc, tokens []string, terms map[string]float64) []string {
	var fields []string
	for _, name := range fieldNames {
		fd := doc.Fields[name]
		if fd.Tokens == nil {
			continue
		}
		hit := false
		for _, t := range tokens {
			if fd.Tokens[t] > 0 {
				hit = true
				break
			}
		}
		if !hit {
			for t := range terms {
				if fd.Tokens[t] > 0 {
					hit = true
					break
				}
			}
		}
		if hit {
			fields = append(fields, name)
		}
	}
	return fields
}
