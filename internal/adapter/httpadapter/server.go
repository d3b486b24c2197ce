// Package httpadapter serves the geostormx HTTP API.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

// SnapshotSource provides the latest forecast snapshot.
type SnapshotSource interface {
	Latest() (forecast.Snapshot, bool)
}

// PlaybackController is the scrubber surface exposed over HTTP.
type PlaybackController interface {
	State() forecast.PlaybackState
	Play() forecast.PlaybackState
	Pause() forecast.PlaybackState
	ToggleSpeed() forecast.PlaybackState
	Reset() (forecast.PlaybackState, error)
	Seek(i int) (forecast.PlaybackState, error)
}

// Deps are the collaborators the API handlers call into.
type Deps struct {
	Snapshots SnapshotSource
	Pricer    domain.Pricer
	Playback  PlaybackController
	Countries *domain.CountryTable
	Stream    http.HandlerFunc
	Ready     sharedobs.ReadinessChecker
	Clock     clockwork.Clock
	Metrics   *observability.Metrics
}

// Server exposes health, metrics, and the /api/v1 routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its router.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Countries == nil {
		deps.Countries = domain.DefaultCountryTable()
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      newRouter(deps, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

func newRouter(deps Deps, logger *slog.Logger) http.Handler {
	h := &handlers{deps: deps, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(metricsMiddleware(deps.Metrics))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/forecast", h.getForecast)
		r.Get("/frames/{index}", h.getFrame)
		r.Get("/oval", h.getOval)
		r.Get("/terminator", h.getTerminator)
		r.Get("/aviation", h.getAviation)
		r.Post("/quote", h.postQuote)

		r.Get("/playback", h.getPlayback)
		r.Post("/playback/{action}", h.postPlayback)

		if deps.Stream != nil {
			r.Get("/ws", deps.Stream)
		}
	})

	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
