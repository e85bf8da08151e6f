// Package ranker turns match candidates into scored, ordered search results.
//
// The score of a candidate combines its match-kind weight, textual strength,
// and the entry's usage statistics:
//
//	score = clamp((weight × strength × 100 + usageBoost) × (0.5 + 0.5 × successRate), 0, 100)
//
// where usageBoost = min(usage, UsageCap) × UsageWeight. An entry that has
// never been used is halved; a perfectly successful one keeps its full
// textual score. The result is always within [0,100].
//
// Ranking is fully deterministic: ties break on usage count descending, then
// entry ID ascending, and recency ordering reads entry timestamps rather
// than the wall clock.
package ranker

import (
	"sort"

	"github.com/dshills/kbsearch-mcp/internal/matcher"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// Usage boost parameters
const (
	// UsageCap bounds how many recorded uses contribute to the boost
	UsageCap = 50

	// UsageWeight converts capped usage into score points (max +10)
	UsageWeight = 0.2
)

// Weight returns the base scoring weight for a match kind. The switch is
// exhaustive over the closed MatchType enumeration; an unknown kind scores
// zero rather than something arbitrary.
func Weight(mt types.MatchType) float64 {
	switch mt {
	case types.MatchExact:
		return 1.0
	case types.MatchTag:
		return 0.9
	case types.MatchSemantic:
		return 0.85
	case types.MatchAI:
		return 0.85
	case types.MatchFuzzy:
		return 0.7
	case types.MatchCategory:
		return 0.6
	default:
		return 0
	}
}

// Score computes the 0-100 relevance score of one candidate against its entry
func Score(c matcher.Candidate, e *types.KBEntry) float64 {
	s := Weight(c.Type) * c.Strength * 100

	usage := e.UsageCount
	if usage > UsageCap {
		usage = UsageCap
	}
	s += float64(usage) * UsageWeight

	s *= 0.5 + 0.5*e.SuccessRate()

	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Ranked pairs a scored result with the candidate that produced it, so the
// engine can derive highlights and explanations from the winning candidate.
type Ranked struct {
	Result    types.SearchResult
	Candidate matcher.Candidate
}

// Rank scores candidates, keeps the best candidate per entry, applies the
// threshold, sorts per the requested order, and truncates to the limit.
// Candidates referencing unknown entry IDs are dropped.
func Rank(cands []matcher.Candidate, byID map[string]*types.KBEntry, opts types.SearchOptions) []Ranked {
	type scored struct {
		ranked Ranked
		weight float64 // weight × strength, picks the best candidate per entry
	}

	best := make(map[string]scored, len(cands))
	order := make([]string, 0, len(cands))

	for _, c := range cands {
		entry, ok := byID[c.EntryID]
		if !ok {
			continue
		}
		w := Weight(c.Type) * c.Strength
		prev, seen := best[c.EntryID]
		if seen && prev.weight >= w {
			continue
		}
		if !seen {
			order = append(order, c.EntryID)
		}
		best[c.EntryID] = scored{
			weight: w,
			ranked: Ranked{
				Candidate: c,
				Result: types.SearchResult{
					Entry:     entry,
					Score:     Score(c, entry),
					MatchType: c.Type,
				},
			},
		}
	}

	threshold := opts.NormalizedThreshold()
	results := make([]Ranked, 0, len(order))
	for _, id := range order {
		r := best[id].ranked
		if r.Result.Score < threshold {
			continue
		}
		results = append(results, r)
	}

	sortResults(results, opts.EffectiveSort())

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// sortResults orders results per the sort order with deterministic tie-breaks
func sortResults(results []Ranked, order types.SortOrder) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Result, results[j].Result
		switch order {
		case types.SortByUsage:
			if a.Entry.UsageCount != b.Entry.UsageCount {
				return a.Entry.UsageCount > b.Entry.UsageCount
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		case types.SortByRecency:
			if !a.Entry.UpdatedAt.Equal(b.Entry.UpdatedAt) {
				return a.Entry.UpdatedAt.After(b.Entry.UpdatedAt)
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		default: // relevance
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Entry.UsageCount != b.Entry.UsageCount {
				return a.Entry.UsageCount > b.Entry.UsageCount
			}
		}
		return a.Entry.ID < b.Entry.ID
	})
}
