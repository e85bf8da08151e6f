// Package index builds the in-memory search index over a knowledge-base snapshot.
//
// The index is built once per entry snapshot and is immutable afterwards. It
// contains three structures:
//
//   - An inverted index mapping normalized terms to the set of entry IDs that
//     contain them, used for exact token matching.
//   - Per-entry field documents (normalized text plus token multisets) used
//     for substring matching and similarity computation.
//   - A symmetric-deletion map (every term keyed by each of its
//     single-character deletions) used to generate fuzzy term candidates in
//     O(token length) without scanning the vocabulary.
//
// # Usage
//
//	ix := index.Build(entries)
//
//	ids := ix.Postings["abend"]            // entries containing "abend"
//	terms := ix.FuzzyTerms("abned")        // candidate terms within distance 1
//
// Build runs tokenization concurrently across a worker pool but produces a
// deterministic result: per-entry documents are position-assigned and the
// merged maps are value-identical regardless of scheduling.
//
// # Snapshots
//
// Fingerprint identifies an entry snapshot by hashing entry IDs, update
// timestamps, and usage counters. The engine rebuilds the index whenever the
// fingerprint changes and swaps the new snapshot in atomically; an index is
// never patched in place.
package index
