package engine

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/kbsearch-mcp/internal/index"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// DefaultCacheSize is used when WithQueryCache gets a non-positive size
const DefaultCacheSize = 1000

// cachedResult stores a result detached from entry pointers, so a cache hit
// can be re-bound to whichever snapshot the caller supplied.
type cachedResult struct {
	entryID     string
	score       float64
	matchType   types.MatchType
	highlights  []types.Highlight
	explanation string
}

type cacheEntry struct {
	results   []cachedResult
	expiresAt time.Time
}

// queryCache is an LRU+TTL cache of ranked results keyed by query, options,
// and snapshot fingerprint.
type queryCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[[32]byte, *cacheEntry]
	ttl   time.Duration
}

func newQueryCache(size int, ttl time.Duration) *queryCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// Only reachable with a non-positive size, which is normalized above
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}
	return &queryCache{cache: cache, ttl: ttl}
}

func (qc *queryCache) get(query string, opts types.SearchOptions, ix *index.Index) ([]types.SearchResult, bool) {
	key := cacheKey(query, opts, ix.Fingerprint())
	now := time.Now()

	qc.mu.RLock()
	entry, found := qc.cache.Get(key)
	if !found {
		qc.mu.RUnlock()
		return nil, false
	}
	if now.After(entry.expiresAt) {
		qc.mu.RUnlock()
		qc.removeExpired(key, entry)
		return nil, false
	}

	// Re-bind cached results to the caller's snapshot while holding the
	// read lock, so results always point into live entries.
	results := make([]types.SearchResult, 0, len(entry.results))
	for _, cr := range entry.results {
		e, ok := ix.ByID[cr.entryID]
		if !ok {
			qc.mu.RUnlock()
			return nil, false
		}
		highlights := make([]types.Highlight, len(cr.highlights))
		copy(highlights, cr.highlights)
		if len(highlights) == 0 {
			highlights = nil
		}
		results = append(results, types.SearchResult{
			Entry:       e,
			Score:       cr.score,
			MatchType:   cr.matchType,
			Highlights:  highlights,
			Explanation: cr.explanation,
		})
	}
	qc.mu.RUnlock()
	return results, true
}

// removeExpired evicts an entry a reader saw expire. A put may have
// refreshed the key between the reader dropping its read lock and this
// write lock, so only the observed entry is removed.
func (qc *queryCache) removeExpired(key [32]byte, entry *cacheEntry) {
	qc.mu.Lock()
	if current, ok := qc.cache.Peek(key); ok && current == entry {
		qc.cache.Remove(key)
	}
	qc.mu.Unlock()
}

func (qc *queryCache) put(query string, opts types.SearchOptions, ix *index.Index, results []types.SearchResult) {
	key := cacheKey(query, opts, ix.Fingerprint())

	stored := make([]cachedResult, 0, len(results))
	for _, r := range results {
		highlights := make([]types.Highlight, len(r.Highlights))
		copy(highlights, r.Highlights)
		stored = append(stored, cachedResult{
			entryID:     r.Entry.ID,
			score:       r.Score,
			matchType:   r.MatchType,
			highlights:  highlights,
			explanation: r.Explanation,
		})
	}

	entry := &cacheEntry{
		results:   stored,
		expiresAt: time.Now().Add(qc.ttl),
	}

	qc.mu.Lock()
	qc.cache.Add(key, entry)
	qc.mu.Unlock()
}

// purge empties the cache; used when callers know results went stale early
func (qc *queryCache) purge() {
	qc.mu.Lock()
	qc.cache.Purge()
	qc.mu.Unlock()
}

// cacheKey builds a deterministic hash of the full request identity
func cacheKey(query string, opts types.SearchOptions, fingerprint [32]byte) [32]byte {
	var data strings.Builder
	data.WriteString(query)
	data.WriteString("|")
	fmt.Fprintf(&data, "%d|%t|%g|%s|%s|%t|%t",
		opts.Limit, opts.UseAI, opts.Threshold, opts.Category,
		opts.EffectiveSort(), opts.IncludeHighlights, opts.IncludeExplanations)
	data.WriteString("|")
	data.Write(fingerprint[:])
	return sha256.Sum256([]byte(data.String()))
}

// InvalidateCache drops all cached query results. A no-op without a cache.
func (e *Engine) InvalidateCache() {
	if e.cache != nil {
		e.cache.purge()
	}
}
