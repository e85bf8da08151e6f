package store

import (
	"context"
	"errors"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entry doesn't exist
	ErrNotFound = errors.New("entry not found")
	// ErrAlreadyExists is returned when creating a duplicate entry ID
	ErrAlreadyExists = errors.New("entry already exists")
)

// Store defines the interface for persisting knowledge-base entries
type Store interface {
	// CreateEntry inserts a new entry, assigning an ID when none is set
	CreateEntry(ctx context.Context, entry *types.KBEntry) error

	// GetEntry retrieves one entry by ID
	GetEntry(ctx context.Context, id string) (*types.KBEntry, error)

	// UpdateEntry replaces an existing entry's content and bumps UpdatedAt
	UpdateEntry(ctx context.Context, entry *types.KBEntry) error

	// DeleteEntry removes an entry by ID
	DeleteEntry(ctx context.Context, id string) error

	// ListEntries returns a snapshot of all entries ordered by ID. The
	// engine treats the snapshot as immutable.
	ListEntries(ctx context.Context) ([]*types.KBEntry, error)

	// ListEntriesByCategory returns a snapshot restricted to one category
	ListEntriesByCategory(ctx context.Context, category types.Category) ([]*types.KBEntry, error)

	// RecordUsage increments usage_count and one of success_count or
	// failure_count for an entry.
	RecordUsage(ctx context.Context, id string, success bool) error

	// CountEntries returns the number of stored entries
	CountEntries(ctx context.Context) (int, error)

	// Close releases the underlying database
	Close() error
}
