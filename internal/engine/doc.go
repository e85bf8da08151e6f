// Package engine orchestrates knowledge-base search: index management,
// matching, AI-assisted ranking, and highlight generation behind a single
// Search call.
//
// # Basic Usage
//
//	eng := engine.New()
//
//	results, err := eng.Search(ctx, "S0C7 abend", entries, types.SearchOptions{
//	    Limit:             10,
//	    IncludeHighlights: true,
//	})
//
//	for _, r := range results {
//	    fmt.Printf("%-30s %6.2f %s\n", r.Entry.Title, r.Score, r.MatchType)
//	}
//
// # Index Lifecycle
//
// The engine lazily builds an index the first time it sees an entry snapshot
// and rebuilds whenever the snapshot fingerprint changes. The index swap is
// atomic: in-flight searches keep reading the snapshot they started with,
// and concurrent searches against an unchanged index share it without
// mutual exclusion. BuildIndex pre-warms the index explicitly.
//
// # AI Integration
//
// With a semantic bridge configured and UseAI set, the bridge call runs
// concurrently with local matching and its candidates join the common
// scoring pipeline. Any bridge failure, timeout included, degrades silently
// to local-only results; the caller cannot observe the difference between
// "AI unavailable" and "AI found nothing".
//
// # Query Cache
//
// WithQueryCache enables an LRU cache of ranked results keyed by query,
// options, and snapshot fingerprint. Cached hits are re-bound to the entries
// of the current snapshot, so callers always receive pointers into the
// snapshot they supplied.
//
// Search output is deterministic: identical query, entries, and options
// produce identical ordered results on every call.
package engine
