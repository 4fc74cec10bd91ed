// Package chart renders the dashboard's charts with gonum/plot.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/couchcryptid/climate-dashboard/internal/observability"
)

// Name identifies one of the dashboard charts.
type Name string

const (
	Annual     Name = "annual"
	Decades    Name = "decades"
	Difference Name = "difference"
)

// Names lists the charts in dashboard order.
var Names = []Name{Annual, Decades, Difference}

// Format is an image encoding understood by plot.WriterTo.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseName validates a chart name from a URL.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// ParseFormat validates an image format from a URL.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

var (
	colorRed    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorBlue   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorPurple = color.RGBA{R: 0x80, G: 0x00, B: 0x80, A: 0xff}
)

// Renderer draws charts from a report. It implements the http adapter's
// ChartRenderer.
type Renderer struct {
	width   vg.Length
	height  vg.Length
	metrics *observability.Metrics
}

// NewRenderer creates a renderer producing 10x6 inch images.
func NewRenderer(metrics *observability.Metrics) *Renderer {
	return &Renderer{
		width:   10 * vg.Inch,
		height:  6 * vg.Inch,
		metrics: metrics,
	}
}

// Render encodes the named chart for the report.
func (r *Renderer) Render(report domain.Report, name Name, format Format) ([]byte, error) {
	start := time.Now()

	p, err := r.build(report, name)
	if err != nil {
		return nil, fmt.Errorf("build %s chart: %w", name, err)
	}

	wt, err := p.WriterTo(r.width, r.height, string(format))
	if err != nil {
		return nil, fmt.Errorf("encode %s chart: %w", name, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write %s chart: %w", name, err)
	}

	r.metrics.ChartRenders.WithLabelValues(string(name), string(format)).Inc()
	r.metrics.ChartRenderDuration.WithLabelValues(string(name)).Observe(time.Since(start).Seconds())
	return buf.Bytes(), nil
}

func (r *Renderer) build(report domain.Report, name Name) (*plot.Plot, error) {
	switch name {
	case Annual:
		return annualPlot(report.Table)
	case Decades:
		return decadePlot(report.DecadeAverages)
	case Difference:
		return differencePlot(report.Table)
	default:
		return nil, fmt.Errorf("unknown chart %q", name)
	}
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// annualPlot is the J-D time series.
func annualPlot(table domain.Table) (*plot.Plot, error) {
	p := newPlot("Global Land-Ocean Temperature Index (1880-Present)", "Year", "Temperature Anomaly (°C)")

	points := make(plotter.XYs, len(table))
	for i, obs := range table {
		points[i].X = float64(obs.Year)
		points[i].Y = obs.JD
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, err
	}
	line.Color = colorRed
	line.Width = vg.Points(1.5)

	p.Add(line)
	p.Legend.Add("Annual Temperature Anomaly (°C)", line)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// decadePlot is the decade-average series with point markers.
func decadePlot(avgs []domain.DecadeAverage) (*plot.Plot, error) {
	p := newPlot("Decade-wise Global Temperature Anomalies", "Decade", "Avg Temperature Anomaly (°C)")

	points := make(plotter.XYs, len(avgs))
	for i, a := range avgs {
		points[i].X = float64(a.Decade)
		points[i].Y = a.Mean
	}

	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, err
	}
	line.Color = colorBlue
	line.Width = vg.Points(1.5)
	markers.GlyphStyle.Shape = draw.CircleGlyph{}
	markers.GlyphStyle.Color = colorBlue
	markers.GlyphStyle.Radius = vg.Points(3)

	p.Add(line, markers)
	return p, nil
}

// differencePlot draws one bar per year at that year's position. Years
// missing from the table, and the first row's undefined difference, get no bar.
func differencePlot(table domain.Table) (*plot.Plot, error) {
	p := newPlot("Yearly Temperature Anomaly Difference (1880-Present)", "Year", "Temperature Anomaly Difference (°C)")

	for _, run := range differenceRuns(table) {
		bars, err := plotter.NewBarChart(run.values, vg.Points(3))
		if err != nil {
			return nil, err
		}
		bars.XMin = float64(run.first)
		bars.Color = colorPurple
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
	}
	return p, nil
}

// yearRun holds the differences of consecutive years starting at first.
type yearRun struct {
	first  int
	values plotter.Values
}

// differenceRuns splits the table into runs of consecutive years, in year
// order, so storage follows the row count rather than the year span. Nil
// differences stay zero.
func differenceRuns(table domain.Table) []yearRun {
	sorted := make(domain.Table, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	var runs []yearRun
	for i, obs := range sorted {
		if i == 0 || obs.Year != sorted[i-1].Year+1 {
			runs = append(runs, yearRun{first: obs.Year})
		}
		v := 0.0
		if obs.TempDifference != nil {
			v = *obs.TempDifference
		}
		cur := &runs[len(runs)-1]
		cur.values = append(cur.values, v)
	}
	return runs
}
