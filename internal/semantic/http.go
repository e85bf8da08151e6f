package semantic

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// CacheSize is the number of bridge responses kept per endpoint
const CacheSize = 500

// HTTPBridge calls a semantic matching service over JSON/HTTP
type HTTPBridge struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	cache      *lru.Cache[string, []Candidate]
}

// NewHTTPBridge creates a bridge for the given endpoint. A zero timeout
// selects DefaultTimeout.
func NewHTTPBridge(endpoint, apiKey string, timeout time.Duration) (*HTTPBridge, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cache, err := lru.New[string, []Candidate](CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	return &HTTPBridge{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}, nil
}

// Timeout returns the per-call deadline of this bridge
func (b *HTTPBridge) Timeout() time.Duration {
	return b.timeout
}

// wire formats for the bridge protocol
type bridgeRequest struct {
	Query   string        `json:"query"`
	Entries []bridgeEntry `json:"entries"`
}

type bridgeEntry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Problem  string   `json:"problem"`
	Solution string   `json:"solution"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

type bridgeResponse struct {
	Candidates []struct {
		EntryID     string  `json:"entry_id"`
		Score       float64 `json:"score"`
		Explanation string  `json:"explanation,omitempty"`
		MatchType   string  `json:"match_type,omitempty"`
	} `json:"candidates"`
}

// SemanticSearch posts the query and entry snapshot to the service and
// returns its scored candidates. The call is bounded by the bridge timeout
// on top of whatever deadline ctx already carries.
func (b *HTTPBridge) SemanticSearch(ctx context.Context, query string, entries []*types.KBEntry) ([]Candidate, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := requestHash(query, entries)
	if cached, ok := b.cache.Get(key); ok {
		out := make([]Candidate, len(cached))
		copy(out, cached)
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	config := DefaultRetryConfig()
	cands, err := retryWithBackoff(ctx, config, func() ([]Candidate, error) {
		return b.callAPI(ctx, query, entries)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBridgeFailed, err)
	}

	if err := ValidateCandidates(cands); err != nil {
		return nil, err
	}

	b.cache.Add(key, cands)
	return cands, nil
}

func (b *HTTPBridge) callAPI(ctx context.Context, query string, entries []*types.KBEntry) ([]Candidate, error) {
	reqBody := bridgeRequest{
		Query:   query,
		Entries: make([]bridgeEntry, 0, len(entries)),
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		reqBody.Entries = append(reqBody.Entries, bridgeEntry{
			ID:       e.ID,
			Title:    e.Title,
			Problem:  e.Problem,
			Solution: e.Solution,
			Category: string(e.Category),
			Tags:     e.Tags,
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp bridgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	cands := make([]Candidate, 0, len(apiResp.Candidates))
	for _, c := range apiResp.Candidates {
		mt := types.MatchSemantic
		if c.MatchType != "" {
			mt = types.MatchType(c.MatchType)
		}
		cands = append(cands, Candidate{
			EntryID:     c.EntryID,
			Score:       c.Score,
			Explanation: c.Explanation,
			Type:        mt,
		})
	}
	return cands, nil
}

// requestHash keys the response cache by query and snapshot content
func requestHash(query string, entries []*types.KBEntry) string {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	for _, e := range entries {
		if e == nil {
			continue
		}
		h.Write([]byte(e.ID))
		h.Write([]byte{0})
		h.Write([]byte(e.UpdatedAt.UTC().Format(time.RFC3339Nano)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
