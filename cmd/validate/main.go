// Command validate checks a country-table JSON file before it is deployed
// via COUNTRY_TABLE_PATH. It verifies that the file loads, that every box
// covers a sensible area, and reports regions no aurora oval can reach.
//
// Usage:
//
//	go run ./cmd/validate -table data/countries.json
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kanishkautag/GeoStormX/internal/domain"
)

// maxBoxSpanDegrees flags boxes wider than this as likely data-entry errors.
const maxBoxSpanDegrees = 200.0

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("table", "", "path to a country-table JSON file (empty validates the built-in table)")
	flag.Parse()

	os.Exit(run(*path))
}

func run(path string) int {
	fmt.Println("=== Country Table Validation ===")
	fmt.Println()

	table, load := loadTable(path)
	phases := []*phase{load}
	if table != nil {
		phases = append(phases, validateBoxes(table), validateReachability(table))
	}

	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	failed := false
	for _, p := range phases {
		if len(p.errors) == 0 && len(p.notes) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Printf("  note: %s\n", n)
		}
		failed = failed || !p.passed()
	}

	if failed {
		fmt.Println("\nValidation FAILED.")
		return 1
	}
	if table != nil {
		fmt.Printf("\n%d regions. All validations passed.\n", table.Len())
	}
	return 0
}

func loadTable(path string) (*domain.CountryTable, *phase) {
	p := &phase{name: "Phase 1: Load"}
	if path == "" {
		p.notef("no -table given, validating the built-in table")
		return domain.DefaultCountryTable(), p
	}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open %s: %v", path, err)
		return nil, p
	}
	defer f.Close()

	table, err := domain.LoadCountryTable(f)
	if err != nil {
		p.errorf("%v", err)
		return nil, p
	}
	return table, p
}

func validateBoxes(table *domain.CountryTable) *phase {
	p := &phase{name: "Phase 2: Bounding boxes"}
	for _, c := range table.Countries() {
		b := c.Bounds
		if b.North == b.South {
			p.errorf("%s: zero latitude span", c.Name)
		}
		if b.West == b.East {
			p.errorf("%s: zero longitude span", c.Name)
		}
		if span := lngSpan(b); span > maxBoxSpanDegrees && !strings.Contains(c.Name, "Russia") {
			p.notef("%s: spans %.1f° of longitude", c.Name, span)
		}
		if b.WrapsAntimeridian() {
			p.notef("%s: wraps the antimeridian (west %.2f > east %.2f)", c.Name, b.West, b.East)
		}
	}
	return p
}

// validateReachability sweeps every Kp third and every UTC hour of a day and
// reports regions that no night-side oval ever touches.
func validateReachability(table *domain.CountryTable) *phase {
	p := &phase{name: "Phase 3: Oval reachability"}

	reached := make(domain.RegionSet)
	day := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	for thirds := 0; thirds <= 27; thirds++ {
		lat := domain.DefaultLatitude(float64(thirds) / 3)
		for hour := 0; hour < 24; hour++ {
			oval := domain.NightSideOval(lat, day.Add(time.Duration(hour)*time.Hour))
			for name := range table.Affected(oval.Points) {
				reached[name] = struct{}{}
			}
		}
	}

	for _, c := range table.Countries() {
		if !reached.Has(c.Name) {
			p.notef("%s is never under the default-latitude oval", c.Name)
		}
	}
	return p
}

func lngSpan(b domain.Bounds) float64 {
	if b.WrapsAntimeridian() {
		return 360 - (b.West - b.East)
	}
	return b.East - b.West
}
