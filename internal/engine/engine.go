package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/kbsearch-mcp/internal/highlight"
	"github.com/dshills/kbsearch-mcp/internal/index"
	"github.com/dshills/kbsearch-mcp/internal/matcher"
	"github.com/dshills/kbsearch-mcp/internal/ranker"
	"github.com/dshills/kbsearch-mcp/internal/semantic"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// DefaultBridgeTimeout bounds the semantic bridge call when no explicit
// timeout is configured.
const DefaultBridgeTimeout = 5 * time.Second

// Engine coordinates search over a knowledge-base snapshot
type Engine struct {
	mu      sync.RWMutex
	current *index.Index // Published snapshot; swapped whole, never patched

	bridge        semantic.Bridge
	bridgeTimeout time.Duration

	cache  *queryCache // nil when caching is disabled
	logger *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithBridge attaches a semantic bridge used when SearchOptions.UseAI is set
func WithBridge(b semantic.Bridge) Option {
	return func(e *Engine) {
		e.bridge = b
	}
}

// WithBridgeTimeout overrides the default bridge call deadline
func WithBridgeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.bridgeTimeout = d
		}
	}
}

// WithQueryCache enables LRU caching of ranked results with the given TTL
func WithQueryCache(size int, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = newQueryCache(size, ttl)
	}
}

// WithLogger sets the logger used for bridge-failure diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine. Without options it searches locally only, with no
// query cache, logging to the default slog handler.
func New(opts ...Option) *Engine {
	e := &Engine{
		bridgeTimeout: DefaultBridgeTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildIndex pre-warms the index for an entry snapshot. Optional: Search
// builds the index on demand.
func (e *Engine) BuildIndex(entries []*types.KBEntry) {
	e.snapshot(entries)
}

// Search runs a query against the entry snapshot and returns ranked results.
//
// Empty, whitespace-only, and punctuation-only queries return an empty
// result list. Invalid options (negative limit, threshold outside [0,100])
// fail fast. A bridge failure is not an error: local results are returned.
func (e *Engine) Search(ctx context.Context, query string, entries []*types.KBEntry, opts types.SearchOptions) ([]types.SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}

	if len(index.Tokenize(query)) == 0 {
		return []types.SearchResult{}, nil
	}

	ix := e.snapshot(entries)

	if e.cache != nil {
		if results, ok := e.cache.get(query, opts, ix); ok {
			return results, nil
		}
	}

	cands := e.gatherCandidates(ctx, query, ix, opts)
	ranked := ranker.Rank(cands, ix.ByID, opts)
	results := e.annotate(query, ranked, ix, opts)

	if e.cache != nil {
		e.cache.put(query, opts, ix, results)
	}
	return results, nil
}

// localResult carries one side of the concurrent match work
type localResult struct {
	cands []matcher.Candidate
}

type bridgeResult struct {
	cands []semantic.Candidate
	err   error
}

// gatherCandidates runs local matching and the bridge call concurrently and
// merges their candidates. Bridge errors degrade to local-only.
func (e *Engine) gatherCandidates(ctx context.Context, query string, ix *index.Index, opts types.SearchOptions) []matcher.Candidate {
	useBridge := opts.UseAI && e.bridge != nil

	if !useBridge {
		return matcher.Match(query, ix, opts.Category)
	}

	localChan := make(chan localResult, 1)
	aiChan := make(chan bridgeResult, 1)

	go func() {
		localChan <- localResult{cands: matcher.Match(query, ix, opts.Category)}
	}()
	go func() {
		bctx, cancel := context.WithTimeout(ctx, e.bridgeTimeout)
		defer cancel()
		cands, err := e.bridge.SemanticSearch(bctx, query, ix.Entries)
		select {
		case aiChan <- bridgeResult{cands: cands, err: err}:
		case <-ctx.Done():
		}
	}()

	var local localResult
	var ai bridgeResult
	var localDone, aiDone bool
	for !localDone || !aiDone {
		select {
		case local = <-localChan:
			localDone = true
		case ai = <-aiChan:
			aiDone = true
		case <-ctx.Done():
			// Caller gave up; return what local matching produced
			if !localDone {
				local = <-localChan
			}
			return local.cands
		}
	}

	if ai.err != nil {
		// Fallback is part of the contract: the caller never sees this
		e.logger.Debug("semantic bridge unavailable, using local results",
			"error", ai.err)
		return local.cands
	}
	if err := semantic.ValidateCandidates(ai.cands); err != nil {
		e.logger.Debug("semantic bridge returned malformed payload",
			"error", err)
		return local.cands
	}

	return append(local.cands, e.convertBridgeCandidates(ai.cands, ix, opts.Category)...)
}

// convertBridgeCandidates maps bridge candidates into the common candidate
// shape, dropping unknown entries and honoring the category filter.
func (e *Engine) convertBridgeCandidates(cands []semantic.Candidate, ix *index.Index, category types.Category) []matcher.Candidate {
	out := make([]matcher.Candidate, 0, len(cands))
	for _, c := range cands {
		doc := ix.Docs[c.EntryID]
		if doc == nil {
			continue
		}
		if category != "" && doc.Entry.Category != category {
			continue
		}
		mt := c.Type
		if mt == "" {
			mt = types.MatchSemantic
		}
		out = append(out, matcher.Candidate{
			EntryID:     c.EntryID,
			Type:        mt,
			Strength:    c.Score,
			Explanation: c.Explanation,
		})
	}
	return out
}

// annotate attaches highlights and explanations to the final ranked results
func (e *Engine) annotate(query string, ranked []ranker.Ranked, ix *index.Index, opts types.SearchOptions) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		res := r.Result

		if opts.IncludeHighlights {
			fields := r.Candidate.Fields
			if len(fields) == 0 {
				fields = tokenFields(query, ix.Docs[res.Entry.ID])
			}
			res.Highlights = highlight.Extract(query, res.Entry, fields)
		}

		if opts.IncludeExplanations {
			switch res.MatchType {
			case types.MatchSemantic, types.MatchAI:
				res.Explanation = r.Candidate.Explanation
				if res.Explanation == "" {
					res.Explanation = "Semantically related to the query"
				}
			}
		}

		results = append(results, res)
	}
	return results
}

// tokenFields derives contributing fields for candidates that carry none,
// such as semantic matches whose terms happen to appear textually.
func tokenFields(query string, doc *index.EntryDoc) []string {
	if doc == nil {
		return nil
	}
	tokens := index.Tokenize(query)
	var fields []string
	for _, name := range []string{index.FieldTitle, index.FieldProblem, index.FieldSolution, index.FieldTags} {
		fd, ok := doc.Fields[name]
		if !ok || fd.Tokens == nil {
			continue
		}
		for _, t := range tokens {
			if fd.Tokens[t] > 0 {
				fields = append(fields, name)
				break
			}
		}
	}
	return fields
}

// snapshot returns the current index, rebuilding when the entry snapshot
// changed. Readers holding the previous index keep using it; the swap only
// replaces the pointer.
func (e *Engine) snapshot(entries []*types.KBEntry) *index.Index {
	fp := index.Fingerprint(entries)

	e.mu.RLock()
	current := e.current
	e.mu.RUnlock()
	if current != nil && current.Fingerprint() == fp {
		return current
	}

	built := index.Build(entries)

	e.mu.Lock()
	// Another builder may have published the same snapshot meanwhile
	if e.current == nil || e.current.Fingerprint() != fp {
		e.current = built
	}
	current = e.current
	e.mu.Unlock()
	return current
}
