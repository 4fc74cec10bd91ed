package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/couchcryptid/climate-dashboard/internal/observability"
)

// ErrNotReady is reported until the single pipeline run has finished.
var ErrNotReady = errors.New("report has not been built yet")

// Loader fetches the raw dataset.
type Loader interface {
	Load(ctx context.Context) (domain.RawTable, error)
}

// Transformer cleans and derives a raw table into a report.
type Transformer interface {
	Transform(raw domain.RawTable) (domain.Report, error)
}

// Publisher forwards a finished report to an external sink.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// outcome is the result of the run: exactly one of report or err is set.
type outcome struct {
	report *domain.Report
	err    error
}

// Pipeline runs load, clean, derive once and holds the resulting report for
// the dashboard.
type Pipeline struct {
	loader      Loader
	transformer Transformer
	publisher   Publisher
	logger      *slog.Logger
	metrics     *observability.Metrics
	result      atomic.Pointer[outcome]
}

// New creates a Pipeline. publisher may be nil.
func New(l Loader, t Transformer, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:      l,
		transformer: t,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
	}
}

// Report returns the built report, the error that ended the run, or
// ErrNotReady while the run is still in progress.
func (p *Pipeline) Report() (domain.Report, error) {
	res := p.result.Load()
	if res == nil {
		return domain.Report{}, ErrNotReady
	}
	if res.err != nil {
		return domain.Report{}, res.err
	}
	return *res.report, nil
}

// CheckReadiness returns nil once a report is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	_, err := p.Report()
	return err
}

// Run executes the pipeline once. A load or cleaning failure ends the run;
// it is kept so the dashboard can show it, and returned.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")

	start := time.Now()
	raw, err := p.loader.Load(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("load dataset: %w", err))
	}
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	report, err := p.transformer.Transform(raw)
	p.recordStats(report.Stats)
	if err != nil {
		return p.fail(fmt.Errorf("build report: %w", err))
	}

	p.result.Store(&outcome{report: &report})
	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.PipelineReady.Set(1)
	if n := len(report.Table); n > 0 {
		latest := report.Table[n-1]
		p.metrics.LatestYear.Set(float64(latest.Year))
		p.metrics.LatestAnomaly.Set(latest.JD)
	}

	p.logger.Info("report ready",
		"rows", report.Stats.RowsKept,
		"decades", len(report.DecadeAverages),
		"duration", time.Since(start),
	)

	p.publish(ctx, report)
	return nil
}

func (p *Pipeline) fail(err error) error {
	p.result.Store(&outcome{err: err})
	p.metrics.PipelineRuns.WithLabelValues("error").Inc()
	p.metrics.PipelineReady.Set(0)
	p.logger.Error("pipeline failed", "error", err)
	return err
}

func (p *Pipeline) recordStats(stats domain.CleanStats) {
	p.metrics.RowsRead.Set(float64(stats.RowsRead))
	p.metrics.RowsKept.Set(float64(stats.RowsKept))
	p.metrics.ColumnsDropped.Set(float64(stats.ColumnsDropped))
	p.metrics.RowsDropped.WithLabelValues("year").Add(float64(stats.DroppedYear))
	p.metrics.RowsDropped.WithLabelValues("annual").Add(float64(stats.DroppedAnnual))
}

// publish forwards the report to the optional sink. Failures are logged and
// counted; the dashboard keeps serving the report either way.
func (p *Pipeline) publish(ctx context.Context, report domain.Report) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, report); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish report failed", "error", err)
		return
	}
	p.metrics.MessagesProduced.Add(float64(len(report.Table)))
}
