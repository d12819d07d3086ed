// Package stats provides small distribution helpers shared by analyzers.
package stats

import "sort"

// Percentile returns the nearest-rank p-th percentile of a sorted slice
// (index floor(p*n/100), clamped to the last element).
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Median is Percentile(sorted, 50).
func Median(sorted []float64) float64 {
	return Percentile(sorted, 50)
}

// Max returns the last element of a sorted slice, or 0 if empty.
func Max(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

// SortedInts converts counts to an ascending float64 slice.
func SortedInts(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	sort.Float64s(out)
	return out
}
