package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obsAt(hour int, kp float64, kind ObservationKind) KpObservation {
	return KpObservation{
		Timestamp: time.Date(2025, 1, 1, hour, 0, 0, 0, time.UTC),
		Kp:        kp,
		Kind:      kind,
	}
}

func TestFindPeak(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		assert.Nil(t, FindPeak(nil))
		assert.Nil(t, FindPeak(KpSeries{}))
	})

	t.Run("single maximum", func(t *testing.T) {
		series := KpSeries{obsAt(0, 2, KindObserved), obsAt(3, 6.33, KindForecast), obsAt(6, 4, KindForecast)}
		peak := FindPeak(series)
		require.NotNil(t, peak)
		assert.Equal(t, 6.33, peak.Kp)
		assert.Equal(t, series[1].Timestamp, peak.Timestamp)
	})

	t.Run("ties resolve to the earliest", func(t *testing.T) {
		series := KpSeries{obsAt(0, 5, KindObserved), obsAt(3, 7, KindForecast), obsAt(6, 7, KindForecast)}
		peak := FindPeak(series)
		require.NotNil(t, peak)
		assert.Equal(t, series[1].Timestamp, peak.Timestamp)
	})

	t.Run("tie in unsorted input", func(t *testing.T) {
		series := KpSeries{obsAt(9, 7, KindForecast), obsAt(3, 7, KindForecast)}
		assert.Equal(t, series[1].Timestamp, FindPeak(series).Timestamp)
	})

	t.Run("peak is a copy", func(t *testing.T) {
		series := KpSeries{obsAt(0, 5, KindObserved)}
		peak := FindPeak(series)
		peak.Kp = 9
		assert.Equal(t, 5.0, series[0].Kp)
	})
}

func TestLatestObserved(t *testing.T) {
	tests := []struct {
		name   string
		series KpSeries
		want   *time.Time
	}{
		{"empty", nil, nil},
		{"forecast only", KpSeries{obsAt(0, 1, KindForecast), obsAt(3, 2, KindForecast)}, nil},
		{
			"last observed before forecasts",
			KpSeries{obsAt(0, 1, KindObserved), obsAt(3, 2, KindObserved), obsAt(6, 3, KindForecast)},
			ptr(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)),
		},
		{
			"observed at the tail",
			KpSeries{obsAt(0, 1, KindForecast), obsAt(3, 2, KindObserved)},
			ptr(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LatestObserved(tt.series)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, got.Timestamp)
			assert.Equal(t, KindObserved, got.Kind)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		sum := Summarize(nil)
		assert.Equal(t, 0, sum.Count)
		assert.Nil(t, sum.Peak)
		assert.Nil(t, sum.LatestObserved)
		assert.Zero(t, sum.MeanKp)
	})

	t.Run("single entry has zero spread", func(t *testing.T) {
		sum := Summarize(KpSeries{obsAt(0, 4, KindObserved)})
		assert.Equal(t, 4.0, sum.MeanKp)
		assert.Zero(t, sum.StdDevKp)
		assert.Equal(t, "G0", sum.PeakScale)
	})

	t.Run("mixed series", func(t *testing.T) {
		series := KpSeries{
			obsAt(0, 2, KindObserved),
			obsAt(3, 4, KindObserved),
			obsAt(6, 6, KindForecast),
			obsAt(9, 8, KindForecast),
		}
		sum := Summarize(series)
		assert.Equal(t, series, sum.Series)
		assert.Equal(t, 4, sum.Count)
		assert.Equal(t, 8.0, sum.Peak.Kp)
		assert.Equal(t, 4.0, sum.LatestObserved.Kp)
		assert.InDelta(t, 5.0, sum.MeanKp, 1e-12)
		// Sample standard deviation of {2,4,6,8}.
		assert.InDelta(t, 2.581988897, sum.StdDevKp, 1e-9)
		assert.Equal(t, "G4", sum.PeakScale)
	})
}

func TestObservationKind_Text(t *testing.T) {
	for _, in := range []string{"observed", "OBSERVED", " observed "} {
		var k ObservationKind
		require.NoError(t, k.UnmarshalText([]byte(in)))
		assert.Equal(t, KindObserved, k)
	}
	for _, in := range []string{"predicted", "estimated", "forecast", ""} {
		k := KindObserved
		require.NoError(t, k.UnmarshalText([]byte(in)))
		assert.Equal(t, KindForecast, k)
	}
}

func ptr[T any](v T) *T { return &v }
