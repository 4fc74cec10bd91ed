package domain

// DefaultPreviewRows is how many leading rows the dashboard previews.
const DefaultPreviewRows = 5

// ReportOptions parameterize BuildReport.
type ReportOptions struct {
	Source      string
	PreviewRows int
}

// BuildReport runs cleaning and derivation over a raw table and assembles the
// dashboard report. It returns ErrEmptyTable when cleaning leaves no rows.
func BuildReport(raw RawTable, opts ReportOptions) (Report, error) {
	cleaned, stats, err := Clean(raw)
	if err != nil {
		return Report{Stats: stats}, err
	}
	if len(cleaned) == 0 {
		return Report{Stats: stats}, ErrEmptyTable
	}

	preview := opts.PreviewRows
	if preview <= 0 {
		preview = DefaultPreviewRows
	}

	table := Derive(cleaned)
	return Report{
		Source:         opts.Source,
		GeneratedAt:    clock.Now().UTC(),
		Table:          table,
		Preview:        table.Head(preview),
		DecadeAverages: DecadeAverages(table),
		AnnualSummary:  Describe(table.Annual()),
		DecadeSummary:  Describe(table.Decades()),
		Stats:          stats,
	}, nil
}
