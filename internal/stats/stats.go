// Package stats holds the summary statistics used by imputation.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Median returns the median of values. For an even count it is the midpoint
// of the two central values. ok is false for an empty input.
func Median(values []float64) (median float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	// The empirical quantile at 0.5 is the lower central value; just above
	// 0.5 it is the upper one. They coincide for odd counts.
	lo := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	hi := stat.Quantile(math.Nextafter(0.5, 1), stat.Empirical, sorted, nil)
	return lo + (hi-lo)/2, true
}

// Mode returns the index of the first occurrence of the most frequent key.
// Ties go to the key seen first. ok is false for an empty input.
func Mode[K comparable](keys []K) (index int, ok bool) {
	if len(keys) == 0 {
		return 0, false
	}
	type tally struct {
		first int
		count int
	}
	counts := make(map[K]*tally, len(keys))
	best := -1
	bestCount := 0
	for i, k := range keys {
		t, seen := counts[k]
		if !seen {
			t = &tally{first: i}
			counts[k] = t
		}
		t.count++
		if t.count > bestCount || (t.count == bestCount && t.first < best) {
			best, bestCount = t.first, t.count
		}
	}
	return best, true
}
