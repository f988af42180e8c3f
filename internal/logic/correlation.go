package logic

import (
	"math"
	"sort"

	"github.com/showdown-ml/battle-features/internal/models"
)

// TopCorrelatedFeatures returns the n column pairs with the largest absolute
// Pearson correlation. Constant columns have no defined correlation and are
// skipped. n <= 0 returns every pair.
func TopCorrelatedFeatures(t *models.Table, n int) []models.Correlation {
	if t == nil || len(t.Rows) < 2 {
		return nil
	}
	cols := len(t.Columns)
	mean := make([]float64, cols)
	for _, r := range t.Rows {
		for j, v := range r.Values {
			mean[j] += v
		}
	}
	rows := float64(len(t.Rows))
	for j := range mean {
		mean[j] /= rows
	}
	norm := make([]float64, cols)
	for _, r := range t.Rows {
		for j, v := range r.Values {
			d := v - mean[j]
			norm[j] += d * d
		}
	}

	var out []models.Correlation
	for a := 0; a < cols; a++ {
		if norm[a] == 0 {
			continue
		}
		for b := a + 1; b < cols; b++ {
			if norm[b] == 0 {
				continue
			}
			var cov float64
			for _, r := range t.Rows {
				cov += (r.Values[a] - mean[a]) * (r.Values[b] - mean[b])
			}
			out = append(out, models.Correlation{
				A: t.Columns[a],
				B: t.Columns[b],
				R: cov / math.Sqrt(norm[a]*norm[b]),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].R) > math.Abs(out[j].R)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
