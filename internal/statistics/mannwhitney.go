// Package statistics holds the rank statistics and summary math shared by
// the bias metrics.
package statistics

import (
	"sort"

	"github.com/spboyer/fairscore/internal/models"
)

// Ranks returns the 1-based ranks of values. Tied values share the mean of
// the ranks they span.
func Ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		// positions i..j-1 hold ranks i+1..j
		r := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = r
		}
		i = j
	}
	return ranks
}

// MannWhitneyU returns the U statistic of sample a against sample b: the
// number of (a, b) pairs with a > b, ties counting one half. This is the
// statistic reported for the one-sided alternative "a tends to be less
// than b". ok is false when either sample is empty.
func MannWhitneyU(a, b []float64) (u float64, ok bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	combined := make([]float64, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)

	ranks := Ranks(combined)
	rankSum := 0.0
	for _, r := range ranks[:len(a)] {
		rankSum += r
	}
	n := float64(len(a))
	return rankSum - n*(n+1)/2, true
}

// NormalizedMWU is MannWhitneyU divided by the number of pairs, so it lies
// in [0, 1]. Undefined when either sample is empty.
func NormalizedMWU(a, b []float64) models.Metric {
	u, ok := MannWhitneyU(a, b)
	if !ok {
		return models.Undefined
	}
	return models.Defined(u / (float64(len(a)) * float64(len(b))))
}
