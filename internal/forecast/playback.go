package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

// ErrNoTimeline is returned by controls that need a loaded forecast.
var ErrNoTimeline = errors.New("forecast: no timeline loaded")

// ErrIndexOutOfRange is returned by Seek for an index outside the timeline.
var ErrIndexOutOfRange = errors.New("forecast: timeline index out of range")

// SnapshotSource provides the timeline playback walks over.
type SnapshotSource interface {
	Latest() (Snapshot, bool)
}

// FrameSink receives every frame the scrubber lands on.
type FrameSink interface {
	SendFrame(frame domain.Frame)
}

// PlaybackState is the externally visible scrubber position.
type PlaybackState struct {
	Index    int           `json:"index"`
	Length   int           `json:"length"`
	Playing  bool          `json:"playing"`
	Slow     bool          `json:"slow"`
	Interval time.Duration `json:"interval_ns"`
}

// Playback advances through the forecast timeline on a clock, wrapping at
// the end, and pushes each frame to its sinks.
type Playback struct {
	source    SnapshotSource
	countries *domain.CountryTable
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	fast      time.Duration
	slow      time.Duration

	mu      sync.Mutex
	index   int
	playing bool
	slowed  bool
	sinks   []FrameSink

	wake chan struct{}
}

// NewPlayback creates a paused scrubber at index 0. A nil clock uses real time.
func NewPlayback(src SnapshotSource, countries *domain.CountryTable, fast, slow time.Duration,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Playback {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Playback{
		source:    src,
		countries: countries,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		fast:      fast,
		slow:      slow,
		wake:      make(chan struct{}, 1),
	}
}

// Subscribe registers a sink for future frames.
func (p *Playback) Subscribe(sink FrameSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, sink)
}

// State returns the current scrubber position.
func (p *Playback) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Playback) stateLocked() PlaybackState {
	length := 0
	if snap, ok := p.source.Latest(); ok {
		length = len(snap.Timeline)
	}
	return PlaybackState{
		Index:    p.index,
		Length:   length,
		Playing:  p.playing,
		Slow:     p.slowed,
		Interval: p.intervalLocked(),
	}
}

func (p *Playback) intervalLocked() time.Duration {
	if p.slowed {
		return p.slow
	}
	return p.fast
}

// Play starts advancing on the next tick.
func (p *Playback) Play() PlaybackState {
	p.mu.Lock()
	p.playing = true
	st := p.stateLocked()
	p.mu.Unlock()
	p.notify()
	return st
}

// Pause stops advancing and keeps the current index.
func (p *Playback) Pause() PlaybackState {
	p.mu.Lock()
	p.playing = false
	st := p.stateLocked()
	p.mu.Unlock()
	p.notify()
	return st
}

// ToggleSpeed switches between the fast and slow intervals.
func (p *Playback) ToggleSpeed() PlaybackState {
	p.mu.Lock()
	p.slowed = !p.slowed
	st := p.stateLocked()
	p.mu.Unlock()
	p.notify()
	return st
}

// Reset pauses, rewinds to index 0 and emits that frame.
func (p *Playback) Reset() (PlaybackState, error) {
	p.mu.Lock()
	p.playing = false
	p.index = 0
	p.mu.Unlock()
	p.notify()
	return p.emitCurrent()
}

// Seek jumps to index i and emits that frame.
func (p *Playback) Seek(i int) (PlaybackState, error) {
	snap, ok := p.source.Latest()
	if !ok {
		return PlaybackState{}, ErrNoTimeline
	}
	if _, ok := snap.Timeline.At(i); !ok {
		return PlaybackState{}, fmt.Errorf("seek %d of %d: %w", i, len(snap.Timeline), ErrIndexOutOfRange)
	}
	p.mu.Lock()
	p.index = i
	p.mu.Unlock()
	return p.emitCurrent()
}

// Run drives the scrubber until the context is cancelled.
func (p *Playback) Run(ctx context.Context) error {
	for {
		p.mu.Lock()
		interval := p.intervalLocked()
		p.mu.Unlock()

		timer := p.clock.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-p.wake:
			timer.Stop()
		case <-timer.Chan():
			p.step()
		}
	}
}

// notify restarts the Run timer so interval changes apply immediately.
func (p *Playback) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Playback) step() {
	snap, ok := p.source.Latest()
	if !ok || len(snap.Timeline) == 0 {
		return
	}

	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.index = snap.Timeline.Next(p.index)
	frame, _ := snap.Timeline.Frame(p.index, p.countries)
	sinks := append([]FrameSink(nil), p.sinks...)
	p.mu.Unlock()

	p.send(sinks, frame)
}

func (p *Playback) emitCurrent() (PlaybackState, error) {
	snap, ok := p.source.Latest()
	if !ok {
		return p.State(), ErrNoTimeline
	}

	p.mu.Lock()
	if p.index >= len(snap.Timeline) {
		p.index = 0
	}
	frame, ok := snap.Timeline.Frame(p.index, p.countries)
	sinks := append([]FrameSink(nil), p.sinks...)
	st := p.stateLocked()
	p.mu.Unlock()

	if !ok {
		return st, ErrNoTimeline
	}
	p.send(sinks, frame)
	return st, nil
}

func (p *Playback) send(sinks []FrameSink, frame domain.Frame) {
	for _, s := range sinks {
		s.SendFrame(frame)
	}
	p.metrics.FramesEmitted.Inc()
	p.metrics.PlaybackIndex.Set(float64(frame.Index))
	p.logger.Debug("playback frame", "index", frame.Index, "kp", frame.Point.ForecastKp)
}
