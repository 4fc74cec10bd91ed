// Command validate runs the cleaning and derivation stages over a local
// GISTEMP CSV and checks the properties the dashboard relies on: retained
// rows are well-formed and in source order, cleaning and derivation are
// idempotent, the decade and difference rules hold, and the aggregates agree
// with the table. With -report-json it also compares a report fixture
// written by genmock against a fresh build.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/GLB.Ts+dSST.csv \
//	  -report-json data/mock/report.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/adapter/gistemp"
	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
)

// tolerance bounds floating-point drift between recomputed aggregates.
const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to a GISTEMP CSV file")
	reportJSON := flag.String("report-json", "", "optional path to a report fixture written by genmock")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *reportJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, reportJSONPath string) int {
	fmt.Println("=== Climate Data Integrity Validation ===")
	fmt.Println()

	raw, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	table, stats, err := domain.Clean(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: clean: %v\n", err)
		return 1
	}
	derived := domain.Derive(table)

	// ── Run validation phases ──
	phases := []*phase{
		validateCleaning(table, stats),
		validateIdempotence(table, derived),
		validateDerivation(derived),
		validateAggregates(derived),
	}
	if reportJSONPath != "" {
		phases = append(phases, validateReportFixture(raw, reportJSONPath))
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d read, %d kept, %d dropped (year), %d dropped (annual); %d empty columns\n",
		stats.RowsRead, stats.RowsKept, stats.DroppedYear, stats.DroppedAnnual, stats.ColumnsDropped)

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCSV(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer f.Close()
	return gistemp.Parse(f)
}

func loadReport(path string) (domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Report{}, err
	}
	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.Report{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return report, nil
}

// ── Phase 1: cleaning ──

func validateCleaning(table domain.Table, stats domain.CleanStats) *phase {
	p := &phase{name: "Phase 1: Cleaning invariants"}

	if len(table) == 0 {
		p.errorf("no rows survived cleaning")
	}
	if got := stats.RowsKept + stats.DroppedYear + stats.DroppedAnnual; got != stats.RowsRead {
		p.errorf("row accounting: kept %d + dropped %d + %d != read %d",
			stats.RowsKept, stats.DroppedYear, stats.DroppedAnnual, stats.RowsRead)
	}
	if stats.RowsKept != len(table) {
		p.errorf("stats report %d kept rows, table has %d", stats.RowsKept, len(table))
	}

	for i, obs := range table {
		if math.IsNaN(obs.JD) || math.IsInf(obs.JD, 0) {
			p.errorf("year %d: J-D is not finite (%v)", obs.Year, obs.JD)
		}
		if i > 0 && obs.Year <= table[i-1].Year {
			p.errorf("row %d: year %d does not follow %d", i, obs.Year, table[i-1].Year)
		}
	}
	return p
}

// ── Phase 2: idempotence ──

func validateIdempotence(table, derived domain.Table) *phase {
	p := &phase{name: "Phase 2: Idempotence"}

	again, stats, err := domain.Clean(table.Raw())
	if err != nil {
		p.errorf("re-cleaning failed: %v", err)
		return p
	}
	if stats.DroppedYear+stats.DroppedAnnual != 0 {
		p.errorf("re-cleaning dropped %d rows", stats.DroppedYear+stats.DroppedAnnual)
	}
	if diff := cmp.Diff(table, again); diff != "" {
		p.errorf("re-cleaning changed the table (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(derived, domain.Derive(derived)); diff != "" {
		p.errorf("re-deriving changed the table (-first +second):\n%s", diff)
	}
	return p
}

// ── Phase 3: derived columns ──

func validateDerivation(derived domain.Table) *phase {
	p := &phase{name: "Phase 3: Decade and difference rules"}

	for i, obs := range derived {
		if want := domain.DecadeOf(obs.Year); obs.Decade != want {
			p.errorf("year %d: decade %d, want %d", obs.Year, obs.Decade, want)
		}
		if obs.Decade > obs.Year || obs.Year-obs.Decade >= 10 || obs.Decade%10 != 0 {
			p.errorf("year %d: decade %d outside [decade, decade+10)", obs.Year, obs.Decade)
		}

		if i == 0 {
			if obs.TempDifference != nil {
				p.errorf("first row (year %d) has a difference %v", obs.Year, *obs.TempDifference)
			}
			continue
		}
		if obs.TempDifference == nil {
			p.errorf("year %d: missing difference", obs.Year)
			continue
		}
		if want := obs.JD - derived[i-1].JD; math.Abs(*obs.TempDifference-want) > tolerance {
			p.errorf("year %d: difference %v, want %v", obs.Year, *obs.TempDifference, want)
		}
	}
	return p
}

// ── Phase 4: aggregates ──

func validateAggregates(derived domain.Table) *phase {
	p := &phase{name: "Phase 4: Decade averages and summary"}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, obs := range derived {
		sums[obs.Decade] += obs.JD
		counts[obs.Decade]++
	}

	avgs := domain.DecadeAverages(derived)
	if len(avgs) != len(counts) {
		p.errorf("%d decade averages for %d decades with data", len(avgs), len(counts))
	}
	total := 0
	for i, a := range avgs {
		if i > 0 && a.Decade <= avgs[i-1].Decade {
			p.errorf("decade %d listed after %d", a.Decade, avgs[i-1].Decade)
		}
		if a.Count != counts[a.Decade] {
			p.errorf("decade %d: count %d, want %d", a.Decade, a.Count, counts[a.Decade])
		}
		if want := sums[a.Decade] / float64(counts[a.Decade]); math.Abs(a.Mean-want) > tolerance {
			p.errorf("decade %d: mean %v, want %v", a.Decade, a.Mean, want)
		}
		total += a.Count
	}
	if total != len(derived) {
		p.errorf("decade counts sum to %d, table has %d rows", total, len(derived))
	}

	for _, col := range []struct {
		name string
		s    domain.Summary
	}{
		{"J-D", domain.Describe(derived.Annual())},
		{"Decade", domain.Describe(derived.Decades())},
	} {
		s := col.s
		if s.Count != len(derived) {
			p.errorf("%s: count %d, want %d", col.name, s.Count, len(derived))
		}
		if !(s.Min <= s.Q25 && s.Q25 <= s.Q50 && s.Q50 <= s.Q75 && s.Q75 <= s.Max) {
			p.errorf("%s: quantiles out of order: %v", col.name, s.Values())
		}
		if s.Mean < s.Min || s.Mean > s.Max {
			p.errorf("%s: mean %v outside [%v, %v]", col.name, s.Mean, s.Min, s.Max)
		}
	}
	return p
}

// ── Phase 5: report fixture ──

func validateReportFixture(raw domain.RawTable, path string) *phase {
	p := &phase{name: "Phase 5: Report fixture parity"}

	fixture, err := loadReport(path)
	if err != nil {
		p.errorf("load report fixture: %v", err)
		return p
	}

	// Reuse the fixture's timestamp so GeneratedAt compares equal.
	domain.SetClock(clockwork.NewFakeClockAt(fixture.GeneratedAt))
	defer domain.SetClock(nil)

	report, err := domain.BuildReport(raw, domain.ReportOptions{Source: fixture.Source, PreviewRows: len(fixture.Preview)})
	if err != nil {
		p.errorf("build report: %v", err)
		return p
	}

	opts := cmp.Options{
		cmpopts.EquateApprox(0, tolerance),
		cmpopts.EquateNaNs(),
		cmpopts.EquateApproxTime(time.Second),
	}
	if diff := cmp.Diff(fixture, report, opts); diff != "" {
		p.errorf("fixture differs from a fresh build (-fixture +fresh):\n%s", diff)
	}
	return p
}
