package index

import (
	"crypto/sha256"
	"encoding/binary"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// FieldDoc holds the normalized form of one entry field
type FieldDoc struct {
	Norm   string         // Normalized field text for substring matching
	Tokens map[string]int // Token multiset
}

// EntryDoc holds the per-entry structures the matcher operates on
type EntryDoc struct {
	Entry  *types.KBEntry
	Fields map[string]FieldDoc // Keyed by FieldTitle/FieldProblem/FieldSolution/FieldTags
	Terms  map[string]int      // Union multiset across all fields
	Tags   []string            // Normalized tags, original order
}

// Index is an immutable search index over one entry snapshot
type Index struct {
	Entries  []*types.KBEntry
	ByID     map[string]*types.KBEntry
	Docs     map[string]*EntryDoc
	Postings map[string]map[string]struct{} // term -> entry ID set

	// deletions maps every single-character deletion of an indexed term
	// back to the terms that produce it, enabling distance-1 fuzzy
	// candidate lookup without a vocabulary scan.
	deletions map[string][]string

	fingerprint [32]byte
}

// Build constructs an index from an entry snapshot. Entries with missing text
// fields are indexed with those fields empty; nil entries are skipped. The
// snapshot is read, never mutated.
func Build(entries []*types.KBEntry) *Index {
	ix := &Index{
		Entries:   entries,
		ByID:      make(map[string]*types.KBEntry, len(entries)),
		Docs:      make(map[string]*EntryDoc, len(entries)),
		Postings:  make(map[string]map[string]struct{}),
		deletions: make(map[string][]string),
	}
	ix.fingerprint = Fingerprint(entries)

	// Tokenize entries concurrently. Each worker fills its own slice
	// positions, so the merge below sees a deterministic layout.
	docs := make([]*EntryDoc, len(entries))
	workers := runtime.NumCPU()
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers > 1 {
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range entries {
			g.Go(func() error {
				docs[i] = buildDoc(entries[i])
				return nil
			})
		}
		_ = g.Wait() // buildDoc never fails
	} else {
		for i := range entries {
			docs[i] = buildDoc(entries[i])
		}
	}

	// Sequential merge keeps posting and deletion maps deterministic.
	seenTerms := make(map[string]struct{})
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		// Last entry wins on duplicate IDs; the engine dedupes results
		// by ID regardless.
		ix.ByID[doc.Entry.ID] = doc.Entry
		ix.Docs[doc.Entry.ID] = doc
		for term := range doc.Terms {
			ids, ok := ix.Postings[term]
			if !ok {
				ids = make(map[string]struct{})
				ix.Postings[term] = ids
			}
			ids[doc.Entry.ID] = struct{}{}
			if _, ok := seenTerms[term]; !ok {
				seenTerms[term] = struct{}{}
				ix.addDeletions(term)
			}
		}
	}

	return ix
}

// buildDoc tokenizes a single entry into its field documents
func buildDoc(e *types.KBEntry) *EntryDoc {
	if e == nil || e.ID == "" {
		return nil
	}

	doc := &EntryDoc{
		Entry:  e,
		Fields: make(map[string]FieldDoc, 4),
		Terms:  make(map[string]int),
	}

	addField := func(name, text string) {
		norm := Normalize(text)
		fd := FieldDoc{Norm: norm, Tokens: TokenSet(text)}
		doc.Fields[name] = fd
		for t, n := range fd.Tokens {
			doc.Terms[t] += n
		}
	}

	addField(FieldTitle, e.Title)
	addField(FieldProblem, e.Problem)
	addField(FieldSolution, e.Solution)

	for _, tag := range e.Tags {
		if norm := Normalize(tag); norm != "" {
			doc.Tags = append(doc.Tags, norm)
		}
	}
	tagText := FieldDoc{
		Norm:   joinTags(doc.Tags),
		Tokens: make(map[string]int),
	}
	for _, tag := range doc.Tags {
		for t, n := range TokenSet(tag) {
			tagText.Tokens[t] += n
			doc.Terms[t] += n
		}
	}
	if len(tagText.Tokens) == 0 {
		tagText.Tokens = nil
	}
	doc.Fields[FieldTags] = tagText

	return doc
}

func joinTags(tags []string) string {
	switch len(tags) {
	case 0:
		return ""
	case 1:
		return tags[0]
	}
	n := len(tags) - 1
	for _, t := range tags {
		n += len(t)
	}
	b := make([]byte, 0, n)
	for i, t := range tags {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, t...)
	}
	return string(b)
}

// addDeletions registers term under itself and each single-character deletion
func (ix *Index) addDeletions(term string) {
	ix.deletions[term] = append(ix.deletions[term], term)
	for i := 0; i < len(term); i++ {
		del := term[:i] + term[i+1:]
		ix.deletions[del] = append(ix.deletions[del], term)
	}
}

// FuzzyTerms returns the indexed terms within edit distance 1 of token,
// sorted for deterministic iteration. The caller verifies actual distance;
// deletion-map candidates can include false positives at distance 2.
func (ix *Index) FuzzyTerms(token string) []string {
	if token == "" {
		return nil
	}

	seen := make(map[string]struct{})
	collect := func(key string) {
		for _, term := range ix.deletions[key] {
			seen[term] = struct{}{}
		}
	}

	collect(token)
	for i := 0; i < len(token); i++ {
		collect(token[:i] + token[i+1:])
	}
	delete(seen, token) // exact hits are handled by Postings

	if len(seen) == 0 {
		return nil
	}
	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Fingerprint computes the snapshot identity hash for an entry set. Two
// snapshots with the same IDs, update timestamps, and usage counters are
// treated as the same index.
func Fingerprint(entries []*types.KBEntry) [32]byte {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	writeInt(int64(len(entries)))
	for _, e := range entries {
		if e == nil {
			writeInt(-1)
			continue
		}
		h.Write([]byte(e.ID))
		h.Write([]byte{0})
		writeInt(e.UpdatedAt.UnixNano())
		writeInt(int64(e.UsageCount))
		writeInt(int64(e.SuccessCount))
		writeInt(int64(e.FailureCount))
	}

	var fp [32]byte
	copy(fp[:], h.Sum(nil))
	return fp
}

// Fingerprint returns the snapshot identity this index was built from
func (ix *Index) Fingerprint() [32]byte {
	return ix.fingerprint
}

// Len returns the number of indexed entries
func (ix *Index) Len() int {
	return len(ix.Docs)
}
