package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

func bridgeEntries() []*types.KBEntry {
	return []*types.KBEntry{
		{ID: "kb-1", Title: "S0C7 abend", Category: types.CategoryBatch},
		{ID: "kb-2", Title: "VSAM status 93", Category: types.CategoryVSAM},
	}
}

func TestNewHTTPBridge(t *testing.T) {
	_, err := NewHTTPBridge("", "", 0)
	assert.ErrorIs(t, err, ErrNoEndpoint)

	b, err := NewHTTPBridge("http://localhost:9999/match", "key", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, b.Timeout())

	b, err = NewHTTPBridge("http://localhost:9999/match", "", 250*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, b.Timeout())
}

func TestSemanticSearchSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req bridgeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "numeric overflow", req.Query)
		assert.Len(t, req.Entries, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"entry_id": "kb-1", "score": 0.92, "explanation": "numeric data exception is a close concept"},
				{"entry_id": "kb-2", "score": 0.41, "match_type": "ai"},
			},
		})
	}))
	defer srv.Close()

	b, err := NewHTTPBridge(srv.URL, "secret", time.Second)
	require.NoError(t, err)

	cands, err := b.SemanticSearch(context.Background(), "numeric overflow", bridgeEntries())
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, Candidate{
		EntryID:     "kb-1",
		Score:       0.92,
		Explanation: "numeric data exception is a close concept",
		Type:        types.MatchSemantic,
	}, cands[0])
	assert.Equal(t, types.MatchAI, cands[1].Type)
}

func TestSemanticSearchCachesResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{"entry_id": "kb-1", "score": 0.5}},
		})
	}))
	defer srv.Close()

	b, err := NewHTTPBridge(srv.URL, "", time.Second)
	require.NoError(t, err)

	entries := bridgeEntries()
	first, err := b.SemanticSearch(context.Background(), "q", entries)
	require.NoError(t, err)
	second, err := b.SemanticSearch(context.Background(), "q", entries)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call must come from cache")

	// A different snapshot misses the cache
	entries[0].UpdatedAt = entries[0].UpdatedAt.Add(time.Minute)
	_, err = b.SemanticSearch(context.Background(), "q", entries)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSemanticSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewHTTPBridge(srv.URL, "", time.Second)
	require.NoError(t, err)

	_, err = b.SemanticSearch(context.Background(), "q", bridgeEntries())
	assert.ErrorIs(t, err, ErrBridgeFailed)
}

func TestSemanticSearchTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	b, err := NewHTTPBridge(srv.URL, "", 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = b.SemanticSearch(context.Background(), "q", bridgeEntries())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "timeout must bound the call")
}

func TestSemanticSearchMalformedScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{"entry_id": "kb-1", "score": 12.5}},
		})
	}))
	defer srv.Close()

	b, err := NewHTTPBridge(srv.URL, "", time.Second)
	require.NoError(t, err)

	_, err = b.SemanticSearch(context.Background(), "q", bridgeEntries())
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestSemanticSearchEmptyQuery(t *testing.T) {
	b, err := NewHTTPBridge("http://localhost:9999/match", "", time.Second)
	require.NoError(t, err)

	_, err = b.SemanticSearch(context.Background(), "", bridgeEntries())
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestValidateCandidates(t *testing.T) {
	tests := []struct {
		name    string
		cands   []Candidate
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []Candidate{{EntryID: "kb-1", Score: 0.5, Type: types.MatchSemantic}}, false},
		{"valid ai type", []Candidate{{EntryID: "kb-1", Score: 1, Type: types.MatchAI}}, false},
		{"missing id", []Candidate{{Score: 0.5}}, true},
		{"negative score", []Candidate{{EntryID: "kb-1", Score: -0.1}}, true},
		{"score above one", []Candidate{{EntryID: "kb-1", Score: 1.1}}, true},
		{"local match type", []Candidate{{EntryID: "kb-1", Score: 0.5, Type: types.MatchExact}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidates(tt.cands)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedPayload)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	attempts := 0
	config := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	got, err := retryWithBackoff(context.Background(), config, func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := DefaultRetryConfig()
	_, err := retryWithBackoff(ctx, config, func() (int, error) {
		return 0, errors.New("always fails")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
