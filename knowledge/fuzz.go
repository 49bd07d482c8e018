package knowledge

import (
	"math"
	"sort"
	"strings"
)

// TokenSortRatio scores two already-normalized strings 0..100, insensitive
// to word order: each string's tokens are sorted before comparison, so
// "password reset how" and "how reset password" score 100 against each
// other.
func TokenSortRatio(a, b string) int {
	return ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ratio is the classic similarity ratio: (lenSum - distance) / lenSum,
// where distance is edit distance with substitutions costing 2. Equivalent
// to 2*LCS/(lenA+lenB), scaled to 0..100 and rounded.
func ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	lenSum := len(ra) + len(rb)
	if lenSum == 0 {
		return 100
	}

	dist := lenSum - 2*lcsLength(ra, rb)
	return roundHalfEven(100 * float64(lenSum-dist) / float64(lenSum))
}

// roundHalfEven rounds exact halves to the nearest even integer, matching
// how the reference ratio implementations score e.g. 12.5 as 12.
func roundHalfEven(x float64) int {
	floor := math.Floor(x)
	switch diff := x - floor; {
	case diff > 0.5:
		return int(floor) + 1
	case diff < 0.5:
		return int(floor)
	default:
		if int(floor)%2 == 0 {
			return int(floor)
		}
		return int(floor) + 1
	}
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
