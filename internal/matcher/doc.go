// Package matcher produces raw match candidates for a query against an index.
//
// Four local match strategies are applied, each tagging its candidates with a
// match type the ranker later weighs:
//
//   - Exact: the whole normalized query appears as a contiguous phrase in a
//     field, or every query token appears in the entry. Strength 1.0.
//   - Tag: the whole normalized query matches one of the entry's tags,
//     exactly or within the fuzzy floor. Strength 1.0 or the similarity.
//   - Fuzzy: per-token Damerau-Levenshtein similarity (optimal string
//     alignment, normalized by the longer token) aggregated across the
//     query. Strength is the mean best similarity over all query tokens, so
//     unmatched tokens drag it down proportionally.
//   - Category: synthesized when a query token names an entry category and
//     the entry produced no textual candidate, so "VSAM" finds VSAM entries
//     even when none mention the word.
//
// Candidates are provisional and unscored; usage statistics and match-kind
// weighting are applied by the ranker.
//
// The similarity floors (TokenSimilarityFloor, EntrySimilarityFloor) are
// internal to the matcher and unrelated to SearchOptions.Threshold, which
// filters on the final 0-100 score.
package matcher
