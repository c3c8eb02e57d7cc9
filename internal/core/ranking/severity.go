package ranking

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/agenthands/callrank/internal/core/model"
)

const (
	lowerPercentile = 0.33
	upperPercentile = 0.66
)

// Percentiles returns the nearest-rank 33rd and 66th percentiles of values,
// i.e. the values at index ceil(p*n)-1 of the ascending list.
func Percentiles(values []float64) (p33, p66 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(lowerPercentile, stat.Empirical, sorted, nil),
		stat.Quantile(upperPercentile, stat.Empirical, sorted, nil)
}

// AssignSeverity buckets every reached score relative to the percentiles of
// all reached scores. Unreached scores stay at NONE.
func AssignSeverity(scores []*model.RankingScore) {
	var values []float64
	for _, s := range scores {
		if s.Reached() {
			values = append(values, s.Score)
		}
	}
	if len(values) == 0 {
		return
	}

	p33, p66 := Percentiles(values)
	for _, s := range scores {
		if !s.Reached() {
			continue
		}
		switch {
		case s.Score < p33:
			s.Level = model.SeverityLow
		case s.Score < p66:
			s.Level = model.SeverityMedium
		default:
			s.Level = model.SeverityHigh
		}
	}
}
