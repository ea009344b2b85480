// Package features provides the statistical feature capabilities and the catalogs that bundle them.
package features

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Length returns the number of observations.
func Length(s []float64) float64 {
	return float64(len(s))
}

// SumValues returns the sum of all observations. The sum of an empty series is 0.
func SumValues(s []float64) float64 {
	return floats.Sum(s)
}

// Mean returns the arithmetic mean, or NaN for an empty series.
func Mean(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return stat.Mean(s, nil)
}

// Median returns the middle order statistic, averaging the two middle values
// on even counts. The input is not modified.
func Median(s []float64) float64 {
	n := len(s)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(s)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Variance returns the population variance (divisor n), or NaN for an empty series.
func Variance(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	// The compensated sum can round a few ulps below zero on constant series.
	return max(0, stat.PopVariance(s, nil))
}

// StandardDeviation returns the square root of the population variance.
func StandardDeviation(s []float64) float64 {
	return math.Sqrt(Variance(s))
}

// Minimum returns the smallest observation, or NaN for an empty series.
func Minimum(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return floats.Min(s)
}

// Maximum returns the largest observation, or NaN for an empty series.
func Maximum(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return floats.Max(s)
}

// AbsoluteMaximum returns the largest absolute value, or NaN for an empty series.
func AbsoluteMaximum(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	result := math.Abs(s[0])
	for _, v := range s[1:] {
		result = math.Max(result, math.Abs(v))
	}
	return result
}

// RootMeanSquare returns sqrt(mean(x^2)), or NaN for an empty series.
func RootMeanSquare(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return math.Sqrt(AbsoluteEnergy(s) / float64(len(s)))
}

// AbsoluteEnergy returns the sum of squares. The energy of an empty series is 0.
func AbsoluteEnergy(s []float64) float64 {
	return floats.Dot(s, s)
}

// AbsoluteSumOfChanges returns the sum of |x[i+1]-x[i]|. Series shorter than two yield 0.
func AbsoluteSumOfChanges(s []float64) float64 {
	var sum float64
	for i := 1; i < len(s); i++ {
		sum += math.Abs(s[i] - s[i-1])
	}
	return sum
}
