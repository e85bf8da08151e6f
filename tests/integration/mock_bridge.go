package integration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dshills/kbsearch-mcp/internal/semantic"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// MockBridge is a configurable semantic bridge for integration testing. It
// lets tests exercise the merge path and every failure mode without a
// network dependency.
type MockBridge struct {
	mu sync.Mutex

	// Candidates returned on success
	Candidates []semantic.Candidate

	// Err, when set, is returned from every call
	Err error

	// Delay, when set, is waited out (or cut short by ctx) before replying
	Delay time.Duration

	// Calls counts SemanticSearch invocations
	Calls int
}

// SemanticSearch implements semantic.Bridge
func (m *MockBridge) SemanticSearch(ctx context.Context, query string, entries []*types.KBEntry) ([]semantic.Candidate, error) {
	m.mu.Lock()
	m.Calls++
	cands := m.Candidates
	err := m.Err
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return cands, nil
}

// CallCount returns how many times the bridge was invoked
func (m *MockBridge) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

var errBridgeDown = errors.New("bridge unavailable")
