package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ObservationKind tells a measured Kp value apart from a predicted one.
type ObservationKind uint8

const (
	KindForecast ObservationKind = iota
	KindObserved
)

func (k ObservationKind) String() string {
	if k == KindObserved {
		return "observed"
	}
	return "predicted"
}

// MarshalText implements encoding.TextMarshaler.
func (k ObservationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ObservationKind) UnmarshalText(text []byte) error {
	*k = parseKind(string(text))
	return nil
}

// parseKind maps NOAA's observed column onto a kind. Only "observed" is a
// measurement; "estimated", "predicted" and anything unrecognized are forecasts.
func parseKind(s string) ObservationKind {
	if strings.EqualFold(strings.TrimSpace(s), "observed") {
		return KindObserved
	}
	return KindForecast
}

// KpObservation is one normalized entry of a Kp time series.
type KpObservation struct {
	Timestamp time.Time       `json:"time_tag"`
	Kp        float64         `json:"kp"`
	Kind      ObservationKind `json:"observed"`
}

func (o KpObservation) String() string {
	return fmt.Sprintf("%s kp=%.2f (%s)", o.Timestamp.Format(time.RFC3339), o.Kp, o.Kind)
}

// KpSeries is a sequence of observations ordered by ascending timestamp with
// no duplicate timestamps.
type KpSeries []KpObservation

// Kps returns the Kp values in series order.
func (s KpSeries) Kps() []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = o.Kp
	}
	return out
}

// sortAndDedupe orders observations by time. When two share a timestamp the
// later one in input order wins. It returns the number discarded.
func sortAndDedupe(obs []KpObservation) (KpSeries, int) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Timestamp.Before(obs[j].Timestamp)
	})

	out := make(KpSeries, 0, len(obs))
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(o.Timestamp) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}
	return out, len(obs) - len(out)
}

// FindPeak returns the entry with the maximum Kp, preferring the earliest
// timestamp on ties. It returns nil for an empty series.
func FindPeak(series KpSeries) *KpObservation {
	if len(series) == 0 {
		return nil
	}
	best := series[0]
	for _, o := range series[1:] {
		if o.Kp > best.Kp || (o.Kp == best.Kp && o.Timestamp.Before(best.Timestamp)) {
			best = o
		}
	}
	return &best
}

// LatestObserved returns the most recent observed entry, or nil when the
// series holds only forecasts.
func LatestObserved(series KpSeries) *KpObservation {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Kind == KindObserved {
			o := series[i]
			return &o
		}
	}
	return nil
}

// ForecastSummary is the dashboard headline for a series.
type ForecastSummary struct {
	// Series is the summarized series. Snapshots serialize it beside the
	// summary, so it is left out of JSON here.
	Series         KpSeries       `json:"-"`
	Count          int            `json:"count"`
	Peak           *KpObservation `json:"peak"`
	LatestObserved *KpObservation `json:"latest_observed"`
	MeanKp         float64        `json:"mean_kp"`
	StdDevKp       float64        `json:"stddev_kp"`
	PeakScale      string         `json:"peak_scale,omitempty"`
}

// Summarize computes peak, latest observation and spread of a series.
func Summarize(series KpSeries) ForecastSummary {
	sum := ForecastSummary{
		Series:         series,
		Count:          len(series),
		Peak:           FindPeak(series),
		LatestObserved: LatestObserved(series),
	}
	if len(series) == 0 {
		return sum
	}

	kps := series.Kps()
	sum.MeanKp = stat.Mean(kps, nil)
	if len(kps) > 1 {
		sum.StdDevKp = stat.StdDev(kps, nil)
	}
	sum.PeakScale = StormScale(sum.Peak.Kp)
	return sum
}
