package types

// MatchType identifies the strategy that produced a search result
type MatchType string

const (
	MatchExact    MatchType = "exact"    // Contiguous substring or full token match
	MatchFuzzy    MatchType = "fuzzy"    // Edit-distance similarity match
	MatchTag      MatchType = "tag"      // Whole-query match against the tag set
	MatchCategory MatchType = "category" // Synthesized from a category-name query
	MatchSemantic MatchType = "semantic" // Produced by the semantic bridge
	MatchAI       MatchType = "ai"       // AI-ranked result from the bridge
)

// Valid reports whether the match type is a member of the closed enumeration
func (m MatchType) Valid() bool {
	switch m {
	case MatchExact, MatchFuzzy, MatchTag, MatchCategory, MatchSemantic, MatchAI:
		return true
	default:
		return false
	}
}

// Highlight marks a matched span within one field of an entry.
// Start and End are byte offsets into the original field text; Text is the
// matched substring for callers that do not want to re-slice.
type Highlight struct {
	Field string // "title", "problem", "solution", or "tags"
	Start int
	End   int
	Text  string
}

// SearchResult represents a single ranked search result.
// Entry is shared with the caller-supplied snapshot, not owned by the engine;
// its lifetime is bound to that snapshot.
type SearchResult struct {
	Entry     *KBEntry
	Score     float64 // Relevance score in [0,100]
	MatchType MatchType

	// Highlights is populated only when SearchOptions.IncludeHighlights is
	// set, and only for fields that contributed to the match.
	Highlights []Highlight

	// Explanation is populated only for semantic/ai matches when
	// SearchOptions.IncludeExplanations is set.
	Explanation string
}

// Validate checks result invariants
func (r *SearchResult) Validate() error {
	if r.Entry == nil {
		return ErrMissingEntry
	}
	if r.Score < 0 || r.Score > 100 {
		return ErrScoreOutOfRange
	}
	if !r.MatchType.Valid() {
		return ErrInvalidMatchType
	}
	return nil
}
