package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard pipeline.
type Metrics struct {
	PipelineRuns   *prometheus.CounterVec // labels: outcome={success,error}
	PipelineReady  prometheus.Gauge
	FetchDuration  prometheus.Histogram
	RowsRead       prometheus.Gauge
	RowsKept       prometheus.Gauge
	RowsDropped    *prometheus.CounterVec // labels: reason={year,annual}
	ColumnsDropped prometheus.Gauge
	LatestAnomaly  prometheus.Gauge
	LatestYear     prometheus.Gauge

	// Chart rendering metrics.
	ChartRenders        *prometheus.CounterVec   // labels: chart, format
	ChartCache          *prometheus.CounterVec   // labels: result={hit,miss}
	ChartRenderDuration *prometheus.HistogramVec // labels: chart

	// Kafka publication metrics.
	MessagesProduced prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRuns,
		m.PipelineReady,
		m.FetchDuration,
		m.RowsRead,
		m.RowsKept,
		m.RowsDropped,
		m.ColumnsDropped,
		m.LatestAnomaly,
		m.LatestYear,
		m.ChartRenders,
		m.ChartCache,
		m.ChartRenderDuration,
		m.MessagesProduced,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a report is available, 0 otherwise.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the dataset download and parse.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RowsRead: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_read",
			Help:      "Data rows read from the dataset.",
		}),
		RowsKept: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_kept",
			Help:      "Rows left after cleaning.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows excluded during cleaning by reason.",
		}, []string{"reason"}),
		ColumnsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "columns_dropped",
			Help:      "All-empty columns removed during cleaning.",
		}),
		LatestAnomaly: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_annual_anomaly_celsius",
			Help:      "J-D anomaly of the most recent complete year.",
		}),
		LatestYear: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_year",
			Help:      "Most recent complete year in the report.",
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Charts rendered by chart and format.",
		}, []string{"chart", "format"}),
		ChartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_cache_total",
			Help:      "Chart cache lookups by result.",
		}, []string{"result"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Chart rendering duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"chart"}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Observations published to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publications.",
		}),
	}
}
