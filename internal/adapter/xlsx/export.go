// Package xlsx exports a report as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
)

const (
	SheetObservations = "Observations"
	SheetDecades      = "Decades"
	SheetSummary      = "Summary"
)

// Write encodes the report as a workbook with one sheet for the cleaned table,
// one for decade averages and one for the summary statistics.
func Write(w io.Writer, report domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetObservations); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDecades, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeObservations(f, report.Table); err != nil {
		return err
	}
	if err := writeDecades(f, report.DecadeAverages); err != nil {
		return err
	}
	if err := writeSummary(f, report); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeObservations(f *excelize.File, table domain.Table) error {
	header := make([]any, 0, len(domain.Columns)+2)
	for _, c := range domain.Columns {
		header = append(header, c)
	}
	header = append(header, "Decade", "Temp_Difference")
	if err := setRow(f, SheetObservations, 1, header); err != nil {
		return err
	}

	for i, obs := range table {
		row := make([]any, 0, len(header))
		row = append(row, obs.Year)
		for _, m := range obs.Months {
			row = append(row, optional(m))
		}
		row = append(row, obs.JD,
			optional(obs.DN), optional(obs.DJF), optional(obs.MAM), optional(obs.JJA), optional(obs.SON),
			obs.Decade, optional(obs.TempDifference))
		if err := setRow(f, SheetObservations, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDecades(f *excelize.File, avgs []domain.DecadeAverage) error {
	if err := setRow(f, SheetDecades, 1, []any{"Decade", "Mean J-D", "Years"}); err != nil {
		return err
	}
	for i, a := range avgs {
		if err := setRow(f, SheetDecades, i+2, []any{a.Decade, a.Mean, a.Count}); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, report domain.Report) error {
	if err := setRow(f, SheetSummary, 1, []any{"", domain.ColJD, "Decade"}); err != nil {
		return err
	}
	annual := report.AnnualSummary.Values()
	decade := report.DecadeSummary.Values()
	for i, name := range domain.StatNames {
		if err := setRow(f, SheetSummary, i+2, []any{name, finite(annual[i]), finite(decade[i])}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// optional maps a nil cell to an empty spreadsheet cell.
func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// finite leaves undefined statistics (a single row's std) blank.
func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
