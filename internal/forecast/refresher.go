package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

// ErrUnrecognizedPayload is returned when the source payload matches neither
// supported shape.
var ErrUnrecognizedPayload = errors.New("forecast: unrecognized payload shape")

// Source fetches the raw forecast payload.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Publisher hands a finished snapshot to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Snapshot is everything derived from one successful fetch.
type Snapshot struct {
	ID        uuid.UUID              `json:"id"`
	FetchedAt time.Time              `json:"fetched_at"`
	Shape     domain.PayloadShape    `json:"shape"`
	Dropped   int                    `json:"dropped"`
	Series    domain.KpSeries        `json:"series"`
	Summary   domain.ForecastSummary `json:"summary"`
	Timeline  domain.Timeline        `json:"timeline"`
	Aviation  []domain.AviationBlock `json:"aviation"`
}

// CurrentKp is the Kp used for quotes that do not name one: the latest
// observation when there is one, otherwise the entry whose 3-hour block is in
// progress at FetchedAt.
func (s Snapshot) CurrentKp() (float64, bool) {
	if s.Summary.LatestObserved != nil {
		return s.Summary.LatestObserved.Kp, true
	}
	if o := domain.CurrentEntry(s.Series, s.FetchedAt); o != nil {
		return o.Kp, true
	}
	return 0, false
}

// Options tunes a Refresher. Zero values fall back to defaults.
type Options struct {
	Interval          time.Duration
	MaxBackoff        time.Duration
	Countries         *domain.CountryTable
	Latitude          domain.LatitudeFunc
	AviationThreshold float64
	Clock             clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 5 * time.Minute
	}
	if o.MaxBackoff < o.Interval {
		o.MaxBackoff = 8 * o.Interval
	}
	if o.Countries == nil {
		o.Countries = domain.DefaultCountryTable()
	}
	if o.Latitude == nil {
		o.Latitude = domain.DefaultLatitude
	}
	if o.AviationThreshold <= 0 {
		o.AviationThreshold = domain.DefaultAviationThreshold
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Refresher periodically pulls the forecast, normalizes it and keeps the
// latest good snapshot.
type Refresher struct {
	source    Source
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	latest    atomic.Pointer[Snapshot]
}

// NewRefresher creates a Refresher. publisher may be nil.
func NewRefresher(src Source, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Refresher {
	return &Refresher{
		source:    src,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		opts:      opts.withDefaults(),
	}
}

// CheckReadiness returns nil once a snapshot is available.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if r.latest.Load() == nil {
		return errors.New("no forecast snapshot has been loaded yet")
	}
	return nil
}

// Latest returns the most recent snapshot.
func (r *Refresher) Latest() (Snapshot, bool) {
	snap := r.latest.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return *snap, true
}

// Countries returns the region table snapshots are resolved against.
func (r *Refresher) Countries() *domain.CountryTable {
	return r.opts.Countries
}

// Run refreshes immediately and then on every interval until the context is
// cancelled. Failed refreshes back off exponentially and leave the previous
// snapshot in place.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.opts.Interval, "max_backoff", r.opts.MaxBackoff)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	backoff := r.opts.Interval
	for {
		wait := r.opts.Interval
		if _, err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				r.logger.Info("refresher stopping", "reason", ctx.Err())
				return nil
			}
			r.logger.Error("forecast refresh failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = sharedretry.NextBackoff(backoff, r.opts.MaxBackoff)
		} else {
			backoff = r.opts.Interval
		}

		if !sleepWithContext(ctx, r.opts.Clock, wait) {
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Refresh runs one fetch-normalize-publish cycle and stores the result.
func (r *Refresher) Refresh(ctx context.Context) (Snapshot, error) {
	start := r.opts.Clock.Now()

	payload, err := r.source.Fetch(ctx)
	if err != nil {
		r.metrics.ForecastFetches.WithLabelValues("error").Inc()
		return Snapshot{}, fmt.Errorf("fetch forecast: %w", err)
	}

	res := domain.Normalize(payload)
	if res.Shape == domain.ShapeUnknown {
		r.metrics.ForecastFetches.WithLabelValues("error").Inc()
		return Snapshot{}, ErrUnrecognizedPayload
	}
	if res.Dropped > 0 {
		r.logger.Warn("forecast rows dropped", "dropped", res.Dropped, "shape", res.Shape)
		r.metrics.ForecastRowsDropped.Add(float64(res.Dropped))
	}

	snap := r.buildSnapshot(res, start)
	r.latest.Store(&snap)

	r.metrics.ForecastFetches.WithLabelValues("success").Inc()
	r.metrics.ForecastFetchDuration.Observe(r.opts.Clock.Since(start).Seconds())
	r.metrics.ForecastSeriesLength.Set(float64(len(snap.Series)))
	if snap.Summary.Peak != nil {
		r.metrics.ForecastPeakKp.Set(snap.Summary.Peak.Kp)
	}
	r.logger.Info("forecast refreshed",
		"snapshot_id", snap.ID,
		"entries", len(snap.Series),
		"peak_scale", snap.Summary.PeakScale,
		"aviation_blocks", len(snap.Aviation),
	)

	r.publish(ctx, snap)
	return snap, nil
}

func (r *Refresher) buildSnapshot(res domain.NormalizeResult, fetchedAt time.Time) Snapshot {
	return Snapshot{
		ID:        uuid.New(),
		FetchedAt: fetchedAt.UTC(),
		Shape:     res.Shape,
		Dropped:   res.Dropped,
		Series:    res.Series,
		Summary:   domain.Summarize(res.Series),
		Timeline:  domain.BuildTimeline(res.Series, r.opts.Latitude),
		Aviation: domain.AviationBlocks(res.Series, fetchedAt, r.opts.Countries,
			r.opts.Latitude, r.opts.AviationThreshold),
	}
}

// publish is best-effort: a failed publish never discards the snapshot.
func (r *Refresher) publish(ctx context.Context, snap Snapshot) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, snap); err != nil {
		r.logger.Error("publish snapshot failed", "error", err, "snapshot_id", snap.ID)
		r.metrics.PublishErrors.Inc()
		return
	}
	r.metrics.SnapshotsPublished.Inc()
}

// sleepWithContext is retry.SleepWithContext on an injectable clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
