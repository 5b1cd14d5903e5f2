// Package algo has the distribution statistics computed over windowed series
// and contributor groupings.
package algo

import (
	"math"
	"slices"
)

// Entropy returns the Shannon entropy in bits of the series treated as a
// distribution, -sum(p*log2(p)) with p = x/sum. It is 0 when the sum is 0.
func Entropy(values []int) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	if sum == 0 {
		return 0
	}
	var entropy float64
	for _, v := range values {
		if v <= 0 {
			continue
		}
		p := float64(v) / sum
		entropy -= p * math.Log2(p)
	}
	return math.Max(entropy, 0)
}

// Variation returns the coefficient of variation, population standard
// deviation divided by mean. It is 0 for an empty series or a zero mean.
func Variation(values []int) float64 {
	mean, stddev := MeanStdDev(values)
	if mean == 0 {
		return 0
	}
	return stddev / mean
}

// ActiveFraction returns sum/len, the share of active windows for a 0/1 series.
func ActiveFraction(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// MeanStdDev returns the mean and population standard deviation.
func MeanStdDev(values []int) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(n))
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []int) float64 {
	mean, _ := MeanStdDev(values)
	return mean
}

// Median returns the median, averaging the middle pair for even counts.
func Median(values []int) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// Gini calculates the Gini coefficient for a set of values.
// It ranges from 0 (perfect equality) to 1 (perfect inequality).
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 0
	}

	var diffSum float64
	for i := range n {
		for j := range n {
			diffSum += math.Abs(values[i] - values[j])
		}
	}

	g := diffSum / (2 * float64(n*n) * mean)
	return math.Min(math.Max(g, 0), 1) // clamp to [0,1]
}
