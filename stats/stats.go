package stats

import (
	"errors"
	"sort"
)

// ErrEmpty is returned when an aggregate is requested over zero samples.
var ErrEmpty = errors.New("stats: empty sample list")

// List is a collection of numeric samples with aggregate accessors.
type List []float64

// Sum returns the total of all samples. An empty list sums to zero.
func (l List) Sum() float64 {
	var sum float64
	for _, v := range l {
		sum += v
	}
	return sum
}

// Min returns the smallest sample.
func (l List) Min() (float64, error) {
	if len(l) == 0 {
		return 0, ErrEmpty
	}
	m := l[0]
	for _, v := range l[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

// Max returns the largest sample.
func (l List) Max() (float64, error) {
	if len(l) == 0 {
		return 0, ErrEmpty
	}
	m := l[0]
	for _, v := range l[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// Average returns the arithmetic mean of the samples.
func (l List) Average() (float64, error) {
	if len(l) == 0 {
		return 0, ErrEmpty
	}
	return l.Sum() / float64(len(l)), nil
}

// Median returns the middle sample, or the mean of the two middle
// samples when the count is even. The receiver is not reordered.
func (l List) Median() (float64, error) {
	if len(l) == 0 {
		return 0, ErrEmpty
	}
	sorted := make(List, len(l))
	copy(sorted, l)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, nil
	}
	return sorted[mid], nil
}
