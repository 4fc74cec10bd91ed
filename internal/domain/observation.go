package domain

import (
	"time"
)

// Column names assigned to the cleaned table, in source order.
const (
	ColYear = "Year"
	ColJD   = "J-D"
	ColDN   = "D-N"
	ColDJF  = "DJF"
	ColMAM  = "MAM"
	ColJJA  = "JJA"
	ColSON  = "SON"
)

// MonthNames are the twelve monthly anomaly columns.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Columns is the fixed 19-name header applied during cleaning.
var Columns = []string{
	ColYear,
	"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	ColJD, ColDN, ColDJF, ColMAM, ColJJA, ColSON,
}

// RawTable is the loader's output: a header row plus string records, exactly as
// read from the CSV after the title line.
type RawTable struct {
	Header  []string
	Records [][]string
}

// Observation is one calendar year of the index.
type Observation struct {
	Year   int          `json:"year"`
	Months [12]*float64 `json:"months"`
	JD     float64      `json:"j_d"`
	DN     *float64     `json:"d_n,omitempty"`
	DJF    *float64     `json:"djf,omitempty"`
	MAM    *float64     `json:"mam,omitempty"`
	JJA    *float64     `json:"jja,omitempty"`
	SON    *float64     `json:"son,omitempty"`

	// Derived columns.
	Decade         int      `json:"decade"`
	TempDifference *float64 `json:"temp_difference,omitempty"`
}

// Table is an ordered sequence of observations, one per year, in source order.
type Table []Observation

// Years returns the Year column.
func (t Table) Years() []int {
	out := make([]int, len(t))
	for i := range t {
		out[i] = t[i].Year
	}
	return out
}

// Annual returns the J-D column.
func (t Table) Annual() []float64 {
	out := make([]float64, len(t))
	for i := range t {
		out[i] = t[i].JD
	}
	return out
}

// Decades returns the Decade column as floats, ready for statistics.
func (t Table) Decades() []float64 {
	out := make([]float64, len(t))
	for i := range t {
		out[i] = float64(t[i].Decade)
	}
	return out
}

// Head returns at most n leading rows. The result shares no memory with t.
func (t Table) Head(n int) Table {
	if n > len(t) {
		n = len(t)
	}
	if n < 0 {
		n = 0
	}
	out := make(Table, n)
	copy(out, t[:n])
	return out
}

// DecadeAverage is the mean annual anomaly of all rows in one decade.
type DecadeAverage struct {
	Decade int     `json:"decade"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// CleanStats counts what cleaning kept and discarded.
type CleanStats struct {
	RowsRead       int `json:"rows_read"`
	RowsKept       int `json:"rows_kept"`
	DroppedYear    int `json:"dropped_year"`
	DroppedAnnual  int `json:"dropped_annual"`
	ColumnsDropped int `json:"columns_dropped"`
}

// Report is everything the dashboard presents from a single pipeline run.
type Report struct {
	Source         string          `json:"source"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Table          Table           `json:"table"`
	Preview        Table           `json:"preview"`
	DecadeAverages []DecadeAverage `json:"decade_averages"`
	AnnualSummary  Summary         `json:"annual_summary"`
	DecadeSummary  Summary         `json:"decade_summary"`
	Stats          CleanStats      `json:"stats"`
}
