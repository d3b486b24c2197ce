// Command replay renders a saved NOAA planetary K-index payload offline:
// forecast summary, per-step frames with affected regions, aviation blocks,
// and an optional premium quote at the forecast peak. The clock is fixed so
// the output is reproducible.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -payload testdata/noaa-planetary-k-index-forecast.json \
//	  -at 2025-01-01T00:00:00Z \
//	  -asset satellite -cost 5250000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/kanishkautag/GeoStormX/internal/adapter/noaa"
	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

type frameSummary struct {
	Index      int             `json:"index"`
	Time       time.Time       `json:"time"`
	Kp         float64         `json:"kp"`
	Official   string          `json:"official_scale"`
	Storm      string          `json:"storm_scale"`
	Severity   domain.Severity `json:"severity"`
	Vertices   int             `json:"night_side_vertices"`
	Regions    []string        `json:"regions"`
	Renderable bool            `json:"renderable"`
}

type quoteSummary struct {
	Asset domain.InsurableAsset `json:"asset"`
	Kp    float64               `json:"kp"`
	Quote domain.PremiumQuote   `json:"quote"`
}

type report struct {
	FetchedAt time.Time              `json:"fetched_at"`
	Shape     domain.PayloadShape    `json:"shape"`
	Dropped   int                    `json:"dropped"`
	Summary   domain.ForecastSummary `json:"summary"`
	Frames    []frameSummary         `json:"frames"`
	Aviation  []domain.AviationBlock `json:"aviation"`
	Quote     *quoteSummary          `json:"quote,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	payload := fs.String("payload", "", "path to a saved NOAA forecast JSON payload")
	at := fs.String("at", "", "instant to replay at (default: first entry of the payload)")
	asset := fs.String("asset", "", "asset class to quote at the forecast peak (satellite, power_grid, aviation, other)")
	cost := fs.String("cost", "", "replacement cost for the quote")
	threshold := fs.Float64("aviation-threshold", domain.DefaultAviationThreshold, "minimum Kp for aviation blocks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *payload == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -payload")
	}

	start, err := replayTime(*payload, *at)
	if err != nil {
		return err
	}

	// Fixed clock for reproducible snapshot timestamps and aviation windows.
	clock := clockwork.NewFakeClockAt(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	countries := domain.DefaultCountryTable()

	// Metrics land on a private registry and are discarded.
	refresher := forecast.NewRefresher(noaa.FileSource{Path: *payload}, nil, logger, observability.NewMetricsForTesting(), forecast.Options{
		Countries:         countries,
		AviationThreshold: *threshold,
		Clock:             clock,
	})
	snap, err := refresher.Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("replay %s: %w", *payload, err)
	}

	rep := report{
		FetchedAt: snap.FetchedAt,
		Shape:     snap.Shape,
		Dropped:   snap.Dropped,
		Summary:   snap.Summary,
		Frames:    make([]frameSummary, 0, len(snap.Timeline)),
		Aviation:  snap.Aviation,
	}
	for i := range snap.Timeline {
		f, _ := snap.Timeline.Frame(i, countries)
		rep.Frames = append(rep.Frames, frameSummary{
			Index:      f.Index,
			Time:       f.Point.Time,
			Kp:         f.Point.ForecastKp,
			Official:   f.Point.OfficialScale,
			Storm:      domain.StormScale(f.Point.ForecastKp),
			Severity:   f.Severity,
			Vertices:   len(f.Oval.Points),
			Regions:    f.Regions.Sorted(),
			Renderable: f.Renderable,
		})
	}

	if *asset != "" {
		q, err := quoteAtPeak(snap, *asset, *cost)
		if err != nil {
			return err
		}
		rep.Quote = q
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// replayTime resolves -at, falling back to the earliest entry in the payload.
func replayTime(path, at string) (time.Time, error) {
	if at != "" {
		t, err := domain.ParseTargetTime(at)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid -at: %w", err)
		}
		return t, nil
	}

	body, err := noaa.FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		return time.Time{}, err
	}
	res := domain.Normalize(body)
	if len(res.Series) == 0 {
		return time.Time{}, fmt.Errorf("payload %s has no usable entries", path)
	}
	return res.Series[0].Timestamp, nil
}

func quoteAtPeak(snap forecast.Snapshot, class, cost string) (*quoteSummary, error) {
	if snap.Summary.Peak == nil {
		return nil, fmt.Errorf("cannot quote: forecast has no entries")
	}
	c, err := domain.ParseAssetClass(class)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("invalid -cost %q: %w", cost, err)
	}
	asset, err := domain.NewInsurableAsset(c, amount)
	if err != nil {
		return nil, err
	}
	q, err := domain.PriceAsset(asset, snap.Summary.Peak.Kp)
	if err != nil {
		return nil, err
	}
	return &quoteSummary{Asset: asset, Kp: snap.Summary.Peak.Kp, Quote: q}, nil
}
