package statistics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Linspace returns n evenly spaced values from start to stop inclusive.
// stop may be below start for a descending sequence.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	out := floats.Span(make([]float64, n), start, stop)
	out[n-1] = stop
	return out
}

// SquaredDiffIntegral integrates (y - x)² over x with the trapezoidal rule.
// x must be non-decreasing and y the same length; fewer than two points
// integrate to zero.
func SquaredDiffIntegral(y, x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	f := make([]float64, len(x))
	floats.SubTo(f, y, x)
	floats.Mul(f, f)
	return integrate.Trapezoidal(x, f)
}
