package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geostormx"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Forecast refresh metrics.
	ForecastFetches       *prometheus.CounterVec // labels: outcome={success,error}
	ForecastFetchDuration prometheus.Histogram
	ForecastRowsDropped   prometheus.Counter
	ForecastPeakKp        prometheus.Gauge
	ForecastSeriesLength  prometheus.Gauge
	RefresherRunning      prometheus.Gauge

	// Snapshot publishing metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	// Pricing metrics.
	QuotesServed *prometheus.CounterVec // labels: asset_class
	QuoteCache   *prometheus.CounterVec // labels: tier={memory,redis}, result={hit,miss,error}

	// Playback and streaming metrics.
	FramesEmitted    prometheus.Counter
	PlaybackIndex    prometheus.Gauge
	WebSocketClients prometheus.Gauge

	// HTTP metrics.
	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route
}

func newMetrics() *Metrics {
	return &Metrics{
		ForecastFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_fetches_total",
			Help:      "Kp forecast fetch attempts by outcome.",
		}, []string{"outcome"}),
		ForecastFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_fetch_duration_seconds",
			Help:      "Duration of a forecast fetch and normalization cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		ForecastRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_rows_dropped_total",
			Help:      "Forecast rows discarded during normalization.",
		}),
		ForecastPeakKp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_peak_kp",
			Help:      "Peak Kp of the latest forecast snapshot.",
		}),
		ForecastSeriesLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_series_length",
			Help:      "Entries in the latest normalized forecast series.",
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the forecast refresher is active, 0 when shut down.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Forecast snapshots written to the snapshot topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_publish_errors_total",
			Help:      "Failed snapshot publish attempts.",
		}),
		QuotesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Premium quotes served by asset class.",
		}, []string{"asset_class"}),
		QuoteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_total",
			Help:      "Quote cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		FramesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_frames_total",
			Help:      "Frames emitted by the playback scrubber.",
		}),
		PlaybackIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_index",
			Help:      "Timeline index of the last emitted playback frame.",
		}),
		WebSocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of connected WebSocket clients.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ForecastFetches,
		m.ForecastFetchDuration,
		m.ForecastRowsDropped,
		m.ForecastPeakKp,
		m.ForecastSeriesLength,
		m.RefresherRunning,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.QuotesServed,
		m.QuoteCache,
		m.FramesEmitted,
		m.PlaybackIndex,
		m.WebSocketClients,
		m.HTTPRequests,
		m.HTTPRequestDuration,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
