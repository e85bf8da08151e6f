package types

import "fmt"

// SortOrder determines how ranked results are ordered
type SortOrder string

const (
	SortByRelevance SortOrder = "relevance" // Score desc (default)
	SortByUsage     SortOrder = "usage"     // UsageCount desc
	SortByRecency   SortOrder = "recency"   // UpdatedAt desc
)

// SearchOptions controls filtering, ranking, and output shape of a search.
// The zero value is valid: unbounded limit, no threshold, no category filter,
// relevance ordering, no AI, no highlights or explanations.
type SearchOptions struct {
	// Limit caps the number of results. 0 means unbounded.
	Limit int

	// UseAI enables the semantic bridge when one is configured.
	UseAI bool

	// Threshold is the minimum acceptable score. Values in (0,1] are
	// treated as fractions and scaled to the engine's internal 0-100
	// range; values in (1,100] are taken as percentages.
	Threshold float64

	// Category restricts results to entries of one category. Empty means
	// no restriction.
	Category Category

	// SortBy selects the result ordering. Empty means relevance.
	SortBy SortOrder

	IncludeHighlights   bool
	IncludeExplanations bool
}

// NormalizedThreshold returns the threshold on the internal 0-100 scale
func (o *SearchOptions) NormalizedThreshold() float64 {
	if o.Threshold > 0 && o.Threshold <= 1 {
		return o.Threshold * 100
	}
	return o.Threshold
}

// EffectiveSort returns SortBy with the default applied
func (o *SearchOptions) EffectiveSort() SortOrder {
	if o.SortBy == "" {
		return SortByRelevance
	}
	return o.SortBy
}

// Validate fails fast on contract violations. Out-of-range limits and
// thresholds are programmer errors, not runtime conditions to recover from.
func (o *SearchOptions) Validate() error {
	if o.Limit < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeLimit, o.Limit)
	}
	if o.Threshold < 0 || o.Threshold > 100 {
		return fmt.Errorf("%w: got %g", ErrInvalidThreshold, o.Threshold)
	}
	switch o.SortBy {
	case "", SortByRelevance, SortByUsage, SortByRecency:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, o.SortBy)
	}
	if o.Category != "" && !o.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, o.Category)
	}
	return nil
}
