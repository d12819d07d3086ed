package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	sorted := SortedInts([]int{9, 1, 5, 3, 7, 2, 8, 4, 6, 10})

	assert.Equal(t, 6.0, Percentile(sorted, 50))
	assert.Equal(t, 10.0, Percentile(sorted, 90))
	assert.Equal(t, 10.0, Percentile(sorted, 100))
	assert.Equal(t, 1.0, Percentile(sorted, 0))
	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestMedianAndMax(t *testing.T) {
	sorted := SortedInts([]int{4, 0, 2})
	assert.Equal(t, []float64{0, 2, 4}, sorted)
	assert.Equal(t, 2.0, Median(sorted))
	assert.Equal(t, 4.0, Max(sorted))
	assert.Equal(t, 0.0, Max(nil))
}
