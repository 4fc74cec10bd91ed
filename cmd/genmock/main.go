// Command genmock generates a deterministic GISTEMP-shaped CSV fixture and,
// optionally, the report the pipeline builds from it. The report is produced
// by the actual domain package so fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv-out data/mock/GLB.Ts+dSST.csv \
//	  -report-out data/mock/report.json \
//	  -start 1880 -end 2025 -partial-months 9
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/adapter/gistemp"
	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	titleLine  = "Land-Ocean: Global Means"
	unobserved = "***"
)

type options struct {
	start         int
	end           int
	partialMonths int
	headerEvery   int
	seed          uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvOut := flag.String("csv-out", "", "output path for the GISTEMP-shaped CSV fixture")
	reportOut := flag.String("report-out", "", "optional output path for the derived report JSON")
	start := flag.Int("start", 1880, "first year")
	end := flag.Int("end", 2025, "last year")
	partial := flag.Int("partial-months", 9, "observed months in the last year (12 for a complete year)")
	headerEvery := flag.Int("header-every", 0, "repeat the header row every N years (0 disables)")
	seed := flag.Uint64("seed", 1880, "random seed")
	flag.Parse()

	if *csvOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv-out")
	}
	if *end < *start {
		return fmt.Errorf("-end %d is before -start %d", *end, *start)
	}
	if *partial < 0 || *partial > 12 {
		return fmt.Errorf("-partial-months must be between 0 and 12, got %d", *partial)
	}

	opts := options{
		start:         *start,
		end:           *end,
		partialMonths: *partial,
		headerEvery:   *headerEvery,
		seed:          *seed,
	}

	data, err := generate(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*csvOut, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *csvOut, err)
	}
	log.Printf("wrote CSV fixture: %s (%d years)", *csvOut, opts.end-opts.start+1)

	// Set a fixed clock for a reproducible GeneratedAt timestamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(opts.end, time.December, 31, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	raw, err := gistemp.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse generated fixture: %w", err)
	}
	report, err := domain.BuildReport(raw, domain.ReportOptions{Source: *csvOut})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	printStats(report)

	if *reportOut != "" {
		if err := writeJSON(*reportOut, report); err != nil {
			return err
		}
		log.Printf("wrote report fixture: %s", *reportOut)
	}
	return nil
}

// generate renders the fixture: a title line, the header, then one row per
// year with a warming trend, a seasonal cycle and noise. Months after
// partialMonths in the last year are unobserved, as are the aggregates that
// depend on them.
func generate(opts options) ([]byte, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	years := opts.end - opts.start + 1
	months := make([][12]float64, years)
	for i := range months {
		year := opts.start + i
		for m := range 12 {
			months[i][m] = round2(trend(year) + 0.03*math.Sin(float64(m)*math.Pi/6) + rng.NormFloat64()*0.08)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(titleLine + "\n")
	w := csv.NewWriter(&buf)
	if err := w.Write(domain.Columns); err != nil {
		return nil, err
	}

	for i := range years {
		if opts.headerEvery > 0 && i > 0 && i%opts.headerEvery == 0 {
			if err := w.Write(domain.Columns); err != nil {
				return nil, err
			}
		}
		observed := 12
		if i == years-1 {
			observed = opts.partialMonths
		}
		if err := w.Write(yearRow(opts.start+i, months, i, observed)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// yearRow formats row i. observed is how many leading months of that year
// are published.
func yearRow(year int, months [][12]float64, i, observed int) []string {
	cur := months[i]
	row := make([]string, 0, len(domain.Columns))
	row = append(row, strconv.Itoa(year))
	for m := range 12 {
		if m < observed {
			row = append(row, formatAnomaly(cur[m]))
		} else {
			row = append(row, unobserved)
		}
	}

	// prevDec is the previous December, needed by D-N and DJF.
	prevDec, hasPrev := 0.0, i > 0
	if hasPrev {
		prevDec = months[i-1][11]
	}

	row = append(row,
		meanOf(observed >= 12, cur[:]...),
		meanOf(hasPrev && observed >= 11, append([]float64{prevDec}, cur[:11]...)...),
		meanOf(hasPrev && observed >= 2, prevDec, cur[0], cur[1]),
		meanOf(observed >= 5, cur[2], cur[3], cur[4]),
		meanOf(observed >= 8, cur[5], cur[6], cur[7]),
		meanOf(observed >= 11, cur[8], cur[9], cur[10]),
	)
	return row
}

// trend is a piecewise warming curve roughly shaped like the observed record.
func trend(year int) float64 {
	switch {
	case year < 1910:
		return -0.20 - 0.004*float64(year-1880)
	case year < 1945:
		return -0.32 + 0.009*float64(year-1910)
	case year < 1975:
		return -0.01
	default:
		return -0.01 + 0.02*float64(year-1975)
	}
}

func meanOf(ok bool, values ...float64) string {
	if !ok {
		return unobserved
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return formatAnomaly(round2(sum / float64(len(values))))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatAnomaly writes two decimals without a leading zero (".96", "-.17"),
// the way the published file does.
func formatAnomaly(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		s = "0.00"
	}
	switch {
	case strings.HasPrefix(s, "0."):
		return s[1:]
	case strings.HasPrefix(s, "-0."):
		return "-" + s[2:]
	}
	return s
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printStats(report domain.Report) {
	fmt.Println("\n=== Report Statistics ===")
	fmt.Printf("Rows read: %d, kept: %d (dropped: %d year, %d annual)\n",
		report.Stats.RowsRead, report.Stats.RowsKept, report.Stats.DroppedYear, report.Stats.DroppedAnnual)
	if n := len(report.Table); n > 0 {
		fmt.Printf("Years: %d-%d\n", report.Table[0].Year, report.Table[n-1].Year)
	}
	fmt.Printf("J-D mean: %.3f, std: %.3f, min: %.2f, max: %.2f\n",
		report.AnnualSummary.Mean, report.AnnualSummary.Std, report.AnnualSummary.Min, report.AnnualSummary.Max)

	fmt.Println("\nDecade averages:")
	for _, d := range report.DecadeAverages {
		fmt.Printf("  %ds: %+.3f (%d years)\n", d.Decade, d.Mean, d.Count)
	}
}
