package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/kbsearch-mcp/internal/index"
	"github.com/dshills/kbsearch-mcp/pkg/types"
)

func buildTestIndex() *index.Index {
	return index.Build([]*types.KBEntry{
		{
			ID:       "kb-s0c7",
			Title:    "S0C7 abend in payroll batch",
			Problem:  "Data exception during numeric MOVE",
			Solution: "Add NUMERIC test before arithmetic",
			Category: types.CategoryBatch,
			Tags:     []string{"S0C7", "abend", "numeric"},
		},
		{
			ID:       "kb-vsam",
			Title:    "VSAM file status 93 error",
			Problem:  "Record not available, resource held by another job",
			Solution: "Check for exclusive control conflicts",
			Category: types.CategoryVSAM,
			Tags:     []string{"VSAM", "status-93"},
		},
		{
			ID:       "kb-jcl",
			Title:    "JCL error IEF212I dataset not found",
			Problem:  "Step failed because the input dataset was deleted",
			Solution: "Recreate the dataset or fix the DSN",
			Category: types.CategoryJCL,
			Tags:     []string{"JCL", "IEF212I"},
		},
	})
}

func candidatesFor(cands []Candidate, id string) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.EntryID == id {
			out = append(out, c)
		}
	}
	return out
}

func hasType(cands []Candidate, mt types.MatchType) bool {
	for _, c := range cands {
		if c.Type == mt {
			return true
		}
	}
	return false
}

func TestMatchExactPhrase(t *testing.T) {
	ix := buildTestIndex()

	cands := Match("S0C7 abend", ix, "")
	s0c7 := candidatesFor(cands, "kb-s0c7")

	require.NotEmpty(t, s0c7)
	assert.True(t, hasType(s0c7, types.MatchExact))

	for _, c := range s0c7 {
		if c.Type == types.MatchExact {
			assert.Equal(t, 1.0, c.Strength)
			assert.Contains(t, c.Fields, index.FieldTitle)
		}
	}

	// Unrelated entries produce no candidates
	assert.Empty(t, candidatesFor(cands, "kb-jcl"))
}

func TestMatchExactAllTokens(t *testing.T) {
	ix := buildTestIndex()

	// Tokens present but not contiguous in any field
	cands := Match("numeric payroll", ix, "")
	s0c7 := candidatesFor(cands, "kb-s0c7")

	require.NotEmpty(t, s0c7)
	assert.True(t, hasType(s0c7, types.MatchExact))
}

func TestMatchFuzzyTypo(t *testing.T) {
	ix := buildTestIndex()

	cands := Match("S0C7 abned", ix, "")
	s0c7 := candidatesFor(cands, "kb-s0c7")

	require.NotEmpty(t, s0c7)
	assert.True(t, hasType(s0c7, types.MatchFuzzy))
	assert.False(t, hasType(s0c7, types.MatchExact),
		"typo query must not match exactly")

	for _, c := range s0c7 {
		if c.Type == types.MatchFuzzy {
			// s0c7 exact (1.0) + abned~abend (0.8), mean 0.9
			assert.InDelta(t, 0.9, c.Strength, 1e-9)
		}
	}
}

func TestMatchTagWholeQueryOnly(t *testing.T) {
	ix := buildTestIndex()

	// Single-token query equal to a tag
	cands := Match("abend", ix, "")
	assert.True(t, hasType(candidatesFor(cands, "kb-s0c7"), types.MatchTag))

	// A multi-term query sharing one token with a tag is not a tag match
	cands = Match("S0C7 abned", ix, "")
	assert.False(t, hasType(candidatesFor(cands, "kb-s0c7"), types.MatchTag))
}

func TestMatchTagFuzzy(t *testing.T) {
	ix := buildTestIndex()

	cands := Match("abendd", ix, "")
	s0c7 := candidatesFor(cands, "kb-s0c7")

	require.NotEmpty(t, s0c7)
	assert.True(t, hasType(s0c7, types.MatchTag))
	for _, c := range s0c7 {
		if c.Type == types.MatchTag {
			assert.Less(t, c.Strength, 1.0)
			assert.GreaterOrEqual(t, c.Strength, TokenSimilarityFloor)
		}
	}
}

func TestMatchCategoryFilter(t *testing.T) {
	ix := buildTestIndex()

	// "error" appears in both the VSAM and JCL entries
	unfiltered := Match("error", ix, "")
	assert.NotEmpty(t, candidatesFor(unfiltered, "kb-vsam"))
	assert.NotEmpty(t, candidatesFor(unfiltered, "kb-jcl"))

	filtered := Match("error", ix, types.CategoryVSAM)
	assert.NotEmpty(t, candidatesFor(filtered, "kb-vsam"))
	assert.Empty(t, candidatesFor(filtered, "kb-jcl"))
	assert.Empty(t, candidatesFor(filtered, "kb-s0c7"))
}

func TestMatchSynthesizedCategory(t *testing.T) {
	// An entry of the named category with no textual hit is synthesized
	ix := index.Build([]*types.KBEntry{
		{ID: "kb-a", Title: "Cluster define failed", Category: types.CategoryVSAM},
		{ID: "kb-b", Title: "Compile error", Category: types.CategoryCOBOL},
	})

	cands := Match("VSAM", ix, "")
	a := candidatesFor(cands, "kb-a")
	require.Len(t, a, 1)
	assert.Equal(t, types.MatchCategory, a[0].Type)
	assert.Empty(t, candidatesFor(cands, "kb-b"))
}

func TestMatchEmptyAndHostileQueries(t *testing.T) {
	ix := buildTestIndex()

	tests := []string{
		"",
		"   ",
		"\t\n",
		"!@#$%^&*()",
		"'; --",
	}

	for _, q := range tests {
		assert.Empty(t, Match(q, ix, ""), "query %q should yield no candidates", q)
	}

	// SQL-looking text is tokenized like any other text, never executed
	cands := Match("'; DROP TABLE entries; --", ix, "")
	for _, c := range cands {
		assert.True(t, c.Type.Valid())
	}
}

func TestMatchExtremelyLongQuery(t *testing.T) {
	ix := buildTestIndex()

	// A multi-kilobyte query is just a large token set, not an error. One
	// real token in kilobytes of noise dilutes below the entry floor, so
	// the result is empty, never a failure.
	diluted := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 200) + "abend"
	require.Greater(t, len(diluted), 4096)
	for _, c := range Match(diluted, ix, "") {
		assert.True(t, c.Type.Valid())
	}

	// The same size built from matching tokens still matches exactly
	long := strings.TrimSpace(strings.Repeat("abend ", 1000))
	require.Greater(t, len(long), 4096)

	found := candidatesFor(Match(long, ix, ""), "kb-s0c7")
	require.NotEmpty(t, found)
	assert.Equal(t, types.MatchExact, found[0].Type)

	// Pure noise of the same size yields nothing
	noise := strings.Repeat("zzzzqqqq xxxxwwww ", 400)
	assert.Empty(t, Match(noise, ix, ""))
}

func TestMatchDeterministicOrder(t *testing.T) {
	ix := buildTestIndex()

	first := Match("error status", ix, "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Match("error status", ix, ""))
	}
}
