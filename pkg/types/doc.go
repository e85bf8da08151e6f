// Package types provides shared type definitions for the knowledge-base search engine.
//
// This package defines the domain types used across all engine components:
// knowledge-base entries, search options, match types, results, and highlights.
//
// # Core Types
//
// KBEntry represents one knowledge-base record describing a mainframe problem
// and its resolution:
//
//	entry := &types.KBEntry{
//	    ID:       "kb-001",
//	    Title:    "S0C7 abend in payroll batch",
//	    Problem:  "Numeric exception during MOVE of unpacked field",
//	    Solution: "Validate input with NUMERIC test before arithmetic",
//	    Category: types.CategoryBatch,
//	    Tags:     []string{"S0C7", "abend", "numeric"},
//	}
//
// SearchResult pairs an entry with its relevance score (0-100) and the match
// type that produced it:
//
//	for _, r := range results {
//	    fmt.Printf("%-30s %6.2f %s\n", r.Entry.Title, r.Score, r.MatchType)
//	}
//
// Entries referenced by results are shared with the caller-supplied snapshot,
// never copied or owned by the engine.
//
// # Options
//
// SearchOptions controls filtering, ranking, and output shape. All fields are
// optional; the zero value means "no limit, no threshold, no filter, sort by
// relevance". Validate reports contract violations (negative limit, threshold
// out of range) as errors rather than silently clamping.
package types
