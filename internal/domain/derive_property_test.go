package domain

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDecadeOf_PropertyBased checks that every year lands in the decade that
// starts at or before it and ends after it:
//
//	DecadeOf(y) = 10 * floor(y / 10)
func TestDecadeOf_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decade is 10*floor(year/10)", prop.ForAll(
		func(year int) bool {
			d := DecadeOf(year)
			return d == int(10*math.Floor(float64(year)/10)) && d <= year && year < d+10
		},
		gen.IntRange(-5000, 5000),
	))

	properties.TestingRun(t)
}

// TestDerive_PropertyBased verifies that TempDifference is the exact first
// difference of J-D and that deriving twice changes nothing.
func TestDerive_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("first difference of J-D", prop.ForAll(
		func(values []float64) bool {
			table := make(Table, len(values))
			for i, v := range values {
				table[i] = Observation{Year: 1880 + i, JD: v}
			}

			out := Derive(table)
			again := Derive(out)
			for i := range out {
				if i == 0 {
					if out[i].TempDifference != nil || again[i].TempDifference != nil {
						return false
					}
					continue
				}
				want := values[i] - values[i-1]
				if out[i].TempDifference == nil || *out[i].TempDifference != want {
					return false
				}
				if *again[i].TempDifference != want || again[i].Decade != out[i].Decade {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-2, 2)),
	))

	properties.Property("decade averages cover every populated decade once", prop.ForAll(
		func(years []int) bool {
			table := make(Table, len(years))
			seen := make(map[int]bool)
			for i, y := range years {
				table[i] = Observation{Year: y, JD: 0.5}
				seen[DecadeOf(y)] = true
			}

			avgs := DecadeAverages(table)
			if len(avgs) != len(seen) {
				return false
			}
			total := 0
			for i, a := range avgs {
				if i > 0 && avgs[i-1].Decade >= a.Decade {
					return false
				}
				if math.Abs(a.Mean-0.5) > 1e-12 {
					return false
				}
				total += a.Count
			}
			return total == len(years)
		},
		gen.SliceOf(gen.IntRange(1880, 2030)),
	))

	properties.TestingRun(t)
}
