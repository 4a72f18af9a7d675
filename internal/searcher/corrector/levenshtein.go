package corrector

// Levenshtein returns the minimum number of single-rune insertions,
// deletions and substitutions that turn a into b.
func Levenshtein(a, b string) int {
	d, _ := boundedDistance([]rune(a), []rune(b), -1)
	return d
}

// boundedDistance computes the edit distance between a and b using two
// rolling rows. When limit >= 0 it gives up as soon as the distance is
// known to be at least limit, returning ok=false.
func boundedDistance(a, b []rune, limit int) (dist int, ok bool) {
	if len(a) < len(b) {
		a, b = b, a
	}
	if limit >= 0 && len(a)-len(b) >= limit {
		return 0, false
	}
	if len(b) == 0 {
		return len(a), limit < 0 || len(a) < limit
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if limit >= 0 && rowMin >= limit {
			return 0, false
		}
		prev, curr = curr, prev
	}
	dist = prev[len(b)]
	return dist, limit < 0 || dist < limit
}
