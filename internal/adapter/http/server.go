package http

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/climate-dashboard/internal/adapter/xlsx"
	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/couchcryptid/climate-dashboard/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	dashboardTitle = "Climate Change Analysis: Global Land-Ocean Temperature Index"
	dashboardIntro = "This app visualizes the global temperature anomalies from 1880 to the present using NASA's data."

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// unobservedCell marks months the source has not published yet.
	unobservedCell = "***"

	// loadingRetryAfter matches the refresh interval of the loading page.
	loadingRetryAfter = "5"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// dashboardCharts lists the chart sections in page order.
var dashboardCharts = []chartSection{
	{Name: chart.Annual, Heading: "Annual Temperature Anomaly (1880-Present)"},
	{Name: chart.Decades, Heading: "Decade-wise Global Temperature Anomalies"},
	{Name: chart.Difference, Heading: "Yearly Temperature Anomaly Difference (1880-Present)"},
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReportSource provides the report produced by the pipeline run, or the
// error that ended it.
type ReportSource interface {
	ReadinessChecker
	Report() (domain.Report, error)
}

// ChartRenderer draws one chart of a report.
type ChartRenderer interface {
	Render(report domain.Report, name chart.Name, format chart.Format) ([]byte, error)
}

// Server exposes the dashboard, chart images, the workbook export, and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	reports    ReportSource
	charts     ChartRenderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(addr string, reports ReportSource, charts ChartRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports: reports,
		charts:  charts,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /charts/{file}", s.handleChart)
	mux.HandleFunc("GET /report.xlsx", s.handleWorkbook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(reports))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type chartSection struct {
	Name    chart.Name
	Heading string
}

type summaryRow struct {
	Name   string
	JD     string
	Decade string
}

type dashboardView struct {
	Title         string
	Intro         string
	Loading       bool
	Error         string
	PreviewHeader []string
	PreviewRows   [][]string
	Charts        []chartSection
	Summary       []summaryRow
	Source        string
	GeneratedAt   string
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	view := dashboardView{Title: dashboardTitle, Intro: dashboardIntro}
	status := http.StatusOK

	report, err := s.reports.Report()
	switch {
	case errors.Is(err, pipeline.ErrNotReady):
		view.Loading = true
		status = http.StatusServiceUnavailable
	case err != nil:
		view.Error = err.Error()
		status = http.StatusInternalServerError
	default:
		view.PreviewHeader = domain.Columns
		view.PreviewRows = previewRows(report.Preview)
		view.Charts = dashboardCharts
		view.Summary = summaryRows(report.AnnualSummary, report.DecadeSummary)
		view.Source = report.Source
		view.GeneratedAt = report.GeneratedAt.Format(time.RFC3339)
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		s.logger.Error("render dashboard", "error", err)
		http.Error(w, "render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if view.Loading {
		w.Header().Set("Retry-After", loadingRetryAfter)
	}
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	base, ext, ok := strings.Cut(r.PathValue("file"), ".")
	if !ok {
		http.NotFound(w, r)
		return
	}
	name, err := chart.ParseName(base)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	format, err := chart.ParseFormat(ext)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	report, err := s.reports.Report()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	img, err := s.charts.Render(report, name, format)
	if err != nil {
		s.logger.Error("render chart", "chart", name, "format", format, "error", err)
		http.Error(w, "render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(img) //nolint:errcheck // client may have gone away
}

func (s *Server) handleWorkbook(w http.ResponseWriter, _ *http.Request) {
	report, err := s.reports.Report()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf, report); err != nil {
		s.logger.Error("export workbook", "error", err)
		http.Error(w, "export workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="climate-report.xlsx"`)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}

// previewRows renders observations in source column order.
func previewRows(table domain.Table) [][]string {
	rows := make([][]string, 0, len(table))
	for _, obs := range table {
		cells := make([]string, 0, len(domain.Columns))
		cells = append(cells, strconv.Itoa(obs.Year))
		for _, m := range obs.Months {
			cells = append(cells, formatOptional(m))
		}
		cells = append(cells,
			formatCell(obs.JD),
			formatOptional(obs.DN),
			formatOptional(obs.DJF),
			formatOptional(obs.MAM),
			formatOptional(obs.JJA),
			formatOptional(obs.SON),
		)
		rows = append(rows, cells)
	}
	return rows
}

func summaryRows(annual, decade domain.Summary) []summaryRow {
	jd, dec := annual.Values(), decade.Values()
	rows := make([]summaryRow, len(domain.StatNames))
	for i, name := range domain.StatNames {
		rows[i] = summaryRow{Name: name, JD: formatStat(jd[i]), Decade: formatStat(dec[i])}
	}
	return rows
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return unobservedCell
	}
	return formatCell(*v)
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
