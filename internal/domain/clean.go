package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrEmptyTable is returned when no row survives cleaning.
var ErrEmptyTable = errors.New("no observations left after cleaning")

// missingValue is written for nil cells by Table.Raw, matching the source's
// marker for months that have not been observed yet.
const missingValue = "***"

// Clean turns a raw table into typed observations. It drops columns whose cells
// are all empty, assigns the fixed Columns header, keeps only rows whose Year is
// numeric and whose J-D is numeric, and casts Year to an integer. Excluded rows
// are counted in CleanStats; they never produce an error.
//
// The returned table carries no derived columns; see Derive.
func Clean(raw RawTable) (Table, CleanStats, error) {
	stats := CleanStats{RowsRead: len(raw.Records)}
	if len(raw.Records) == 0 {
		return nil, stats, ErrEmptyTable
	}

	keep := nonEmptyColumns(raw)
	stats.ColumnsDropped = tableWidth(raw) - len(keep)
	if len(keep) != len(Columns) {
		return nil, stats, fmt.Errorf("clean: expected %d non-empty columns, got %d", len(Columns), len(keep))
	}

	table := make(Table, 0, len(raw.Records))
	for _, rec := range raw.Records {
		cells := selectCells(rec, keep)

		year, ok := parseYear(cells[0])
		if !ok {
			stats.DroppedYear++
			continue
		}
		annual, ok := parseNumber(cells[13])
		if !ok {
			stats.DroppedAnnual++
			continue
		}

		obs := Observation{
			Year: year,
			JD:   annual,
			DN:   parseOptional(cells[14]),
			DJF:  parseOptional(cells[15]),
			MAM:  parseOptional(cells[16]),
			JJA:  parseOptional(cells[17]),
			SON:  parseOptional(cells[18]),
		}
		for m := range obs.Months {
			obs.Months[m] = parseOptional(cells[1+m])
		}
		table = append(table, obs)
	}

	stats.RowsKept = len(table)
	return table, stats, nil
}

// Raw renders the table back into CSV-shaped records under the Columns header.
// Cleaning the result yields the same table again.
func (t Table) Raw() RawTable {
	records := make([][]string, len(t))
	for i, obs := range t {
		rec := make([]string, 0, len(Columns))
		rec = append(rec, strconv.Itoa(obs.Year))
		for _, m := range obs.Months {
			rec = append(rec, formatOptional(m))
		}
		rec = append(rec,
			formatFloat(obs.JD),
			formatOptional(obs.DN),
			formatOptional(obs.DJF),
			formatOptional(obs.MAM),
			formatOptional(obs.JJA),
			formatOptional(obs.SON),
		)
		records[i] = rec
	}

	header := make([]string, len(Columns))
	copy(header, Columns)
	return RawTable{Header: header, Records: records}
}

// tableWidth is the widest of the header and every record.
func tableWidth(raw RawTable) int {
	width := len(raw.Header)
	for _, rec := range raw.Records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	return width
}

// nonEmptyColumns returns the indexes of columns holding at least one
// non-blank data cell. Header names do not count as data.
func nonEmptyColumns(raw RawTable) []int {
	width := tableWidth(raw)
	keep := make([]int, 0, width)
	for col := 0; col < width; col++ {
		for _, rec := range raw.Records {
			if col < len(rec) && strings.TrimSpace(rec[col]) != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	return keep
}

// selectCells projects a record onto the kept columns, padding short records
// with empty cells.
func selectCells(rec []string, keep []int) []string {
	cells := make([]string, len(keep))
	for i, col := range keep {
		if col < len(rec) {
			cells[i] = rec[col]
		}
	}
	return cells
}

// parseYear parses a Year cell and truncates it to an integer. Values outside
// the int32 range fail like non-numeric cells.
func parseYear(s string) (int, bool) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, false
	}
	v = math.Trunc(v)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// parseNumber parses a cell as a finite decimal. "***", blanks, NaN and
// infinities all fail.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseOptional(s string) *float64 {
	v, ok := parseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return missingValue
	}
	return formatFloat(*v)
}
