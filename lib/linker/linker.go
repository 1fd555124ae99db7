// Package linker pairs names across two lists, preferring exact matches
// and falling back to Jaro-Winkler similarity. Used to spot case
// listings that are probably duplicates of rows already tracked.
package linker

import (
	"github.com/antzucaro/matchr"
)

type Link struct {
	Left        string
	Right       string
	Correlation float64
}

// MostSimilar returns the entry of pool most similar to s along with
// its similarity, or ("", 0) for an empty pool.
func MostSimilar(s string, pool []string) (string, float64) {
	var best string
	var bestScore float64
	for _, candidate := range pool {
		if candidate == s {
			return candidate, 1
		}
		score := matchr.JaroWinkler(s, candidate, false)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best, bestScore
}

// Pair links every entry of left to its best unmatched counterpart in
// right. Exact matches are claimed first so a typo'd entry can't steal
// another entry's exact twin.
func Pair(left, right []string) []Link {
	var result []Link
	matchedLeft := make(map[string]struct{})
	matchedRight := make(map[string]struct{})

	for _, l := range left {
		for _, r := range right {
			if _, taken := matchedRight[r]; taken {
				continue
			}
			if l == r {
				result = append(result, Link{Left: l, Right: r, Correlation: 1})
				matchedLeft[l] = struct{}{}
				matchedRight[r] = struct{}{}
				break
			}
		}
	}

	for _, l := range left {
		if _, done := matchedLeft[l]; done {
			continue
		}

		var best string
		var bestScore float64
		for _, r := range right {
			if _, taken := matchedRight[r]; taken {
				continue
			}
			score := matchr.JaroWinkler(l, r, false)
			if score > bestScore {
				bestScore = score
				best = r
			}
		}
		if bestScore > 0 {
			result = append(result, Link{Left: l, Right: best, Correlation: bestScore})
			matchedLeft[l] = struct{}{}
			matchedRight[best] = struct{}{}
		}
	}

	return result
}
