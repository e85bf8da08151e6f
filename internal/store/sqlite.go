package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore creates a new SQLite-backed entry store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEntry inserts a new entry. An empty ID gets a generated UUID; empty
// timestamps get the current time.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *types.KBEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	tags, err := marshalTags(entry.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO kb_entries
			(id, title, problem, solution, category, tags,
			 usage_count, success_count, failure_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.Title, entry.Problem, entry.Solution,
		string(entry.Category), tags,
		entry.UsageCount, entry.SuccessCount, entry.FailureCount,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, entry.ID)
		}
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves one entry by ID
func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*types.KBEntry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}

// UpdateEntry replaces an entry's content and bumps updated_at
func (s *SQLiteStore) UpdateEntry(ctx context.Context, entry *types.KBEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	tags, err := marshalTags(entry.Tags)
	if err != nil {
		return err
	}
	entry.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE kb_entries
		SET title = ?, problem = ?, solution = ?, category = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		entry.Title, entry.Problem, entry.Solution,
		string(entry.Category), tags, entry.UpdatedAt, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return requireRow(res, entry.ID)
}

// DeleteEntry removes an entry by ID
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM kb_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireRow(res, id)
}

// ListEntries returns all entries ordered by ID
func (s *SQLiteStore) ListEntries(ctx context.Context) ([]*types.KBEntry, error) {
	return s.list(ctx, selectEntry+" ORDER BY id")
}

// ListEntriesByCategory returns entries of one category ordered by ID
func (s *SQLiteStore) ListEntriesByCategory(ctx context.Context, category types.Category) ([]*types.KBEntry, error) {
	return s.list(ctx, selectEntry+" WHERE category = ? ORDER BY id", string(category))
}

// RecordUsage increments usage_count and the matching outcome counter
func (s *SQLiteStore) RecordUsage(ctx context.Context, id string, success bool) error {
	column := "failure_count"
	if success {
		column = "success_count"
	}
	query := fmt.Sprintf(`
		UPDATE kb_entries
		SET usage_count = usage_count + 1,
		    %s = %s + 1,
		    updated_at = ?
		WHERE id = ?
	`, column, column)

	res, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return requireRow(res, id)
}

// CountEntries returns the number of stored entries
func (s *SQLiteStore) CountEntries(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kb_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

const selectEntry = `
	SELECT id, title, problem, solution, category, tags,
	       usage_count, success_count, failure_count, created_at, updated_at
	FROM kb_entries
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*types.KBEntry, error) {
	var entry types.KBEntry
	var category, tags string
	err := row.Scan(
		&entry.ID, &entry.Title, &entry.Problem, &entry.Solution,
		&category, &tags,
		&entry.UsageCount, &entry.SuccessCount, &entry.FailureCount,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Category = types.Category(category)
	if err := json.Unmarshal([]byte(tags), &entry.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", entry.ID, err)
	}
	return &entry, nil
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...interface{}) ([]*types.KBEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*types.KBEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// isUniqueViolation detects primary-key conflicts across both drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "constraint failed")
}
