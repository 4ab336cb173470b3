package statistics

import (
	"math"
	"sort"

	"github.com/spboyer/fairscore/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes the mean, median and population standard deviation of
// per-instance values. Under MissingPropagate a single undefined value makes
// all three aggregates undefined; under MissingSkip undefined values are
// dropped first. The aggregates are undefined when nothing is left.
func Summarize(values []models.Metric, policy models.MissingPolicy) models.Summary {
	s := models.Summary{Values: values}
	if policy != models.MissingSkip && !models.AllDefined(values) {
		return s
	}
	xs := models.Values(values)
	if len(xs) == 0 {
		return s
	}
	mean, variance := stat.PopMeanVariance(xs, nil)
	s.Mean = models.Defined(mean)
	s.Median = models.Defined(Median(xs))
	s.Std = models.Defined(math.Sqrt(variance))
	return s
}

// Median returns the middle value of xs, averaging the two middle values
// for even lengths. Returns NaN for empty input.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mean averages ms under policy. Undefined for empty input.
func Mean(ms []models.Metric, policy models.MissingPolicy) models.Metric {
	if policy != models.MissingSkip && !models.AllDefined(ms) {
		return models.Undefined
	}
	xs := models.Values(ms)
	if len(xs) == 0 {
		return models.Undefined
	}
	return models.Defined(stat.Mean(xs, nil))
}
