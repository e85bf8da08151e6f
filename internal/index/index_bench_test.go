package index

import (
	"fmt"
	"testing"

	"github.com/dshills/kbsearch-mcp/pkg/types"
)

func syntheticEntries(n int) []*types.KBEntry {
	entries := make([]*types.KBEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, &types.KBEntry{
			ID:       fmt.Sprintf("kb-%05d", i),
			Title:    fmt.Sprintf("Abend U%04d in job PAY%03d step %d", i%4096, i%500, i%9),
			Problem:  "Job failed during nightly batch window with a data exception in the numeric edit routine",
			Solution: "Correct the input record layout and rerun from the last checkpoint",
			Category: types.Categories[i%len(types.Categories)],
			Tags:     []string{"abend", fmt.Sprintf("job-%d", i%500), "batch"},
		})
	}
	return entries
}

func BenchmarkBuild(b *testing.B) {
	for _, size := range []int{100, 1000} {
		b.Run(fmt.Sprintf("entries_%d", size), func(b *testing.B) {
			entries := syntheticEntries(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Build(entries)
			}
		})
	}
}

func BenchmarkFuzzyTerms(b *testing.B) {
	ix := Build(syntheticEntries(1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.FuzzyTerms("abned")
	}
}
