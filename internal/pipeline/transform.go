package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
)

// ReportTransformer implements Transformer using the domain cleaning and
// derivation functions.
type ReportTransformer struct {
	opts   domain.ReportOptions
	logger *slog.Logger
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(opts domain.ReportOptions, logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{
		opts:   opts,
		logger: logger,
	}
}

func (t *ReportTransformer) Transform(raw domain.RawTable) (domain.Report, error) {
	report, err := domain.BuildReport(raw, t.opts)
	if err != nil {
		return report, err
	}

	t.logger.Debug("table cleaned",
		"rows_read", report.Stats.RowsRead,
		"rows_kept", report.Stats.RowsKept,
		"dropped_year", report.Stats.DroppedYear,
		"dropped_annual", report.Stats.DroppedAnnual,
		"columns_dropped", report.Stats.ColumnsDropped,
	)
	return report, nil
}
