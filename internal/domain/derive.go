package domain

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DecadeOf floors a year to its decade: 1983 -> 1980, 2019 -> 2010.
// Years before zero floor downwards as well (-5 -> -10).
func DecadeOf(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

// Derive returns a copy of t with Decade and TempDifference filled in.
// TempDifference is J-D minus the previous row's J-D, in table order, and is
// nil for the first row. Derive is idempotent.
//
// Pointer cells (months, seasons) are shared with t; they are never written to.
func Derive(t Table) Table {
	out := make(Table, len(t))
	copy(out, t)

	for i := range out {
		out[i].Decade = DecadeOf(out[i].Year)
		out[i].TempDifference = nil
		if i > 0 {
			diff := out[i].JD - out[i-1].JD
			out[i].TempDifference = &diff
		}
	}
	return out
}

// DecadeAverages groups rows by decade and averages J-D within each group.
// The result is ordered by ascending decade and holds only decades that have rows.
func DecadeAverages(t Table) []DecadeAverage {
	groups := make(map[int][]float64)
	for _, obs := range t {
		d := DecadeOf(obs.Year)
		groups[d] = append(groups[d], obs.JD)
	}

	decades := make([]int, 0, len(groups))
	for d := range groups {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	out := make([]DecadeAverage, len(decades))
	for i, d := range decades {
		values := groups[d]
		out[i] = DecadeAverage{
			Decade: d,
			Mean:   stat.Mean(values, nil),
			Count:  len(values),
		}
	}
	return out
}
