package model

// DeviationBoundary is the relative tolerance used when comparing a measured
// deviation with an expected one.
const DeviationBoundary = 0.05

// ComparableStatistics answers response-time questions for a call that exists
// in both the baseline and the new version.
type ComparableStatistics interface {
	HasCriticalResponseTime() bool
	MaxNegativeDeviation() float64
	IsDeviationWithinBoundary(boundary float64) bool
}

// SimpleStatistics describes a call that only exists in one of the versions.
type SimpleStatistics interface {
	CallCount() int
}

// SimulatedComparison is a fixed ComparableStatistics, used for scenario files
// and tests where the real measurements are precomputed.
type SimulatedComparison struct {
	Critical     bool    `json:"critical"`
	MaxDeviation float64 `json:"max_deviation"`
}

func (s SimulatedComparison) HasCriticalResponseTime() bool {
	return s.Critical
}

func (s SimulatedComparison) MaxNegativeDeviation() float64 {
	return s.MaxDeviation
}

func (s SimulatedComparison) IsDeviationWithinBoundary(boundary float64) bool {
	buffer := boundary * DeviationBoundary
	return boundary-buffer <= s.MaxDeviation && s.MaxDeviation <= boundary+buffer
}

type SimulatedSimpleStatistics struct {
	Count int `json:"call_count"`
}

func (s SimulatedSimpleStatistics) CallCount() int {
	return s.Count
}
