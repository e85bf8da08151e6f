package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSADistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abend", "", 5},
		{"", "abend", 5},
		{"abend", "abend", 0},
		{"abend", "abnd", 1},   // deletion
		{"abend", "abendd", 1}, // insertion
		{"abend", "abemd", 1},  // substitution
		{"abend", "abned", 1},  // transposition
		{"abend", "vsam", 5},
		{"s0c7", "s0c4", 1},
		{"status", "statsu", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, osaDistance(tt.a, tt.b))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("abend", "abend"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("ab", "xyzw"))

	// One edit over five runes
	assert.InDelta(t, 0.8, Similarity("abend", "abned"), 1e-9)

	// Symmetry
	assert.Equal(t, Similarity("abend", "abnd"), Similarity("abnd", "abend"))
}
