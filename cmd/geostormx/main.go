package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/kanishkautag/GeoStormX/internal/adapter/httpadapter"
	kafkaadapter "github.com/kanishkautag/GeoStormX/internal/adapter/kafka"
	"github.com/kanishkautag/GeoStormX/internal/adapter/noaa"
	"github.com/kanishkautag/GeoStormX/internal/adapter/quotecache"
	"github.com/kanishkautag/GeoStormX/internal/adapter/ws"
	"github.com/kanishkautag/GeoStormX/internal/config"
	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	countries, err := loadCountries(cfg.CountryTablePath)
	if err != nil {
		logger.Error("failed to load country table", "error", err, "path", cfg.CountryTablePath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot publishing (feature-flagged via KAFKA_ENABLED).
	var (
		publisher forecast.Publisher
		writer    *kafkaadapter.SnapshotWriter
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewSnapshotWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSnapshotTopic)
	} else {
		logger.Info("kafka snapshot publishing disabled")
	}

	source := noaa.NewClient(cfg.ForecastURL, cfg.ForecastTimeout, logger)
	refresher := forecast.NewRefresher(source, publisher, logger, metrics, forecast.Options{
		Interval:          cfg.RefreshInterval,
		MaxBackoff:        cfg.RefreshMaxBackoff,
		Countries:         countries,
		AviationThreshold: cfg.AviationThreshold,
	})

	// Quote caching: optional shared Redis tier behind the in-process LRU.
	ready := httpadapter.AllReady{refresher}
	var pricer domain.Pricer = domain.FormulaPricer{}
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = quotecache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		shared := quotecache.NewRedis(pricer, rdb, cfg.QuoteCacheTTL, logger, metrics)
		pricer = shared
		ready = append(ready, shared)
		logger.Info("redis quote cache enabled", "ttl", cfg.QuoteCacheTTL)
	}
	pricer = quotecache.NewMemory(pricer, cfg.QuoteCacheSize, cfg.QuoteCacheTTL, metrics)

	hub := ws.NewHub(logger, metrics)
	playback := forecast.NewPlayback(refresher, countries, cfg.PlaybackInterval, cfg.PlaybackSlowInterval, nil, logger, metrics)
	playback.Subscribe(hub)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Snapshots: refresher,
		Pricer:    pricer,
		Playback:  playback,
		Countries: countries,
		Stream:    hub.HandleWS,
		Ready:     ready,
		Metrics:   metrics,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go hub.Run(ctx)

	go func() {
		if err := playback.Run(ctx); err != nil {
			logger.Error("playback error", "error", err)
		}
	}()

	// Start forecast refresher.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadCountries returns the built-in table unless path names a JSON file.
func loadCountries(path string) (*domain.CountryTable, error) {
	if path == "" {
		return domain.DefaultCountryTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open country table: %w", err)
	}
	defer f.Close()
	return domain.LoadCountryTable(f)
}
