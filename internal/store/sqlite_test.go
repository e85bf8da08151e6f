package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testEntry(id string) *types.KBEntry {
	return &types.KBEntry{
		ID:       id,
		Title:    "S0C7 data exception in COMPUTE",
		Problem:  "Program abends with S0C7 during arithmetic",
		Solution: "Initialize numeric fields and validate input with NUMERIC test",
		Category: types.CategoryCOBOL,
		Tags:     []string{"s0c7", "abend"},
	}
}

func TestCreateAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := testEntry("kb-1")
	require.NoError(t, s.CreateEntry(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero())
	assert.False(t, entry.UpdatedAt.IsZero())

	got, err := s.GetEntry(ctx, "kb-1")
	require.NoError(t, err)
	assert.Equal(t, entry.Title, got.Title)
	assert.Equal(t, entry.Problem, got.Problem)
	assert.Equal(t, entry.Solution, got.Solution)
	assert.Equal(t, types.CategoryCOBOL, got.Category)
	assert.Equal(t, []string{"s0c7", "abend"}, got.Tags)
	assert.Equal(t, 0, got.UsageCount)
}

func TestCreateEntryGeneratesID(t *testing.T) {
	s := newTestStore(t)

	entry := testEntry("")
	require.NoError(t, s.CreateEntry(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
}

func TestCreateEntryDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEntry(ctx, testEntry("kb-1")))
	err := s.CreateEntry(ctx, testEntry("kb-1"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateEntryInvalid(t *testing.T) {
	s := newTestStore(t)

	entry := testEntry("kb-1")
	entry.Title = ""
	err := s.CreateEntry(context.Background(), entry)
	assert.Error(t, err)
}

func TestGetEntryNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := testEntry("kb-1")
	require.NoError(t, s.CreateEntry(ctx, entry))
	created := entry.UpdatedAt

	entry.Solution = "Use INITIALIZE before the COMPUTE statement"
	entry.Tags = []string{"s0c7"}
	require.NoError(t, s.UpdateEntry(ctx, entry))

	got, err := s.GetEntry(ctx, "kb-1")
	require.NoError(t, err)
	assert.Equal(t, "Use INITIALIZE before the COMPUTE statement", got.Solution)
	assert.Equal(t, []string{"s0c7"}, got.Tags)
	assert.False(t, got.UpdatedAt.Before(created))
}

func TestUpdateEntryNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateEntry(context.Background(), testEntry("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEntry(ctx, testEntry("kb-1")))
	require.NoError(t, s.DeleteEntry(ctx, "kb-1"))

	_, err := s.GetEntry(ctx, "kb-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteEntry(ctx, "kb-1"), ErrNotFound)
}

func TestListEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testEntry("kb-b")
	a := testEntry("kb-a")
	a.Category = types.CategoryJCL
	require.NoError(t, s.CreateEntry(ctx, b))
	require.NoError(t, s.CreateEntry(ctx, a))

	all, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "kb-a", all[0].ID)
	assert.Equal(t, "kb-b", all[1].ID)

	jcl, err := s.ListEntriesByCategory(ctx, types.CategoryJCL)
	require.NoError(t, err)
	require.Len(t, jcl, 1)
	assert.Equal(t, "kb-a", jcl[0].ID)
}

func TestListEntriesEmpty(t *testing.T) {
	s := newTestStore(t)

	all, err := s.ListEntries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateEntry(ctx, testEntry("kb-1")))

	require.NoError(t, s.RecordUsage(ctx, "kb-1", true))
	require.NoError(t, s.RecordUsage(ctx, "kb-1", true))
	require.NoError(t, s.RecordUsage(ctx, "kb-1", false))

	got, err := s.GetEntry(ctx, "kb-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.UsageCount)
	assert.Equal(t, 2, got.SuccessCount)
	assert.Equal(t, 1, got.FailureCount)
}

func TestRecordUsageNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordUsage(context.Background(), "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.CreateEntry(ctx, testEntry("kb-1")))
	require.NoError(t, s.CreateEntry(ctx, testEntry("kb-2")))

	count, err = s.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
