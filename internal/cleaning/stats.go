package cleaning

import (
	"sort"

	"github.com/inferloop/csvclean/internal/dataset"
)

// quantile computes the p-th quantile of values using linear
// interpolation between closest ranks (index p*(n-1)), the same
// convention the summary statistics in reports are built on. Returns
// false when the statistic is undefined (no values).
//
// gonum's stat.Quantile implements CDF-based cumulant conventions that
// disagree with this definition on small samples, so the interpolation
// is done directly here; gonum still provides the mean/stddev used in
// report profiling.
func quantile(p float64, values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0], true
	}

	idx := p * float64(len(sorted)-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1], true
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), true
}

// median returns the middle value under the same interpolation rule.
func median(values []float64) (float64, bool) {
	return quantile(0.5, values)
}

// modeCell returns the most frequent non-missing cell, with ties broken
// by the first-encountered value in column order. Returns false when the
// column has no non-missing cells.
func modeCell(cells []dataset.Cell) (dataset.Cell, bool) {
	counts := make(map[dataset.Cell]int, len(cells))
	max := 0
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		counts[c]++
		if counts[c] > max {
			max = counts[c]
		}
	}
	if max == 0 {
		return dataset.Cell{}, false
	}
	for _, c := range cells {
		if !c.IsMissing() && counts[c] == max {
			return c, true
		}
	}
	return dataset.Cell{}, false
}
