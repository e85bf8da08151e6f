package semantic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// Common errors
var (
	ErrEmptyQuery       = errors.New("query cannot be empty")
	ErrBridgeFailed     = errors.New("semantic bridge failed")
	ErrMalformedPayload = errors.New("malformed bridge response")
	ErrNoEndpoint       = errors.New("no bridge endpoint configured")
)

// DefaultTimeout bounds a bridge call so a hung service cannot stall search
const DefaultTimeout = 5 * time.Second

// Candidate is one AI-scored match returned by the bridge
type Candidate struct {
	EntryID     string
	Score       float64 // Normalized relevance in [0,1]
	Explanation string
	Type        types.MatchType // MatchSemantic or MatchAI
}

// Bridge sends a query to an external semantic matching service. SemanticSearch
// must honor ctx cancellation; implementations decide their own transport.
type Bridge interface {
	SemanticSearch(ctx context.Context, query string, entries []*types.KBEntry) ([]Candidate, error)
}

// ValidateCandidates rejects malformed bridge payloads: empty entry IDs,
// scores outside [0,1], or unknown match types.
func ValidateCandidates(cands []Candidate) error {
	for i, c := range cands {
		if c.EntryID == "" {
			return fmt.Errorf("%w: candidate %d has empty entry ID", ErrMalformedPayload, i)
		}
		if c.Score < 0 || c.Score > 1 {
			return fmt.Errorf("%w: candidate %d score %g outside [0,1]", ErrMalformedPayload, i, c.Score)
		}
		switch c.Type {
		case "", types.MatchSemantic, types.MatchAI:
		default:
			return fmt.Errorf("%w: candidate %d has match type %q", ErrMalformedPayload, i, c.Type)
		}
	}
	return nil
}
