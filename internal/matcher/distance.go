package matcher

// osaDistance computes the optimal string alignment variant of the
// Damerau-Levenshtein distance: insertions, deletions, substitutions, and
// transpositions of adjacent runes each cost 1.
func osaDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Three rolling rows: two back, previous, current
	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < d {
					d = t // transposition
				}
			}
			curr[j] = d
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[lb]
}

// Similarity returns 1 - distance/maxLen in [0,1]. Identical strings score
// 1.0; strings with nothing in common score 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	sim := 1 - float64(osaDistance(a, b))/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
