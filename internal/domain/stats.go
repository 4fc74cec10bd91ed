package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds describe-style statistics for one column.
// Std is the sample standard deviation (n-1 denominator); quartiles use linear
// interpolation between closest ranks.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"q25"`
	Q50   float64 `json:"q50"`
	Q75   float64 `json:"q75"`
	Max   float64 `json:"max"`
}

// StatNames labels Summary.Values, in order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Values returns the statistics in StatNames order.
func (s Summary) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
}

// Describe summarizes values. An empty input yields a zero count and NaN
// everywhere else; a single value has an undefined (NaN) standard deviation.
func Describe(values []float64) Summary {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	std := math.NaN()
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}

	return Summary{
		Count: n,
		Mean:  stat.Mean(sorted, nil),
		Std:   std,
		Min:   floats.Min(sorted),
		Q25:   linearQuantile(sorted, 0.25),
		Q50:   linearQuantile(sorted, 0.5),
		Q75:   linearQuantile(sorted, 0.75),
		Max:   floats.Max(sorted),
	}
}

// linearQuantile interpolates between the two closest ranks of an ascending
// slice, position p*(n-1). gonum's stat.Quantile offers only the empirical and
// a different interpolation rule, which shift the quartiles on small samples.
func linearQuantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
