package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const defaultForecastURL = "https://services.swpc.noaa.gov/products/noaa-planetary-k-index-forecast.json"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// NOAA SWPC forecast source.
	ForecastURL       string
	ForecastTimeout   time.Duration
	RefreshInterval   time.Duration
	RefreshMaxBackoff time.Duration

	// Optional JSON file replacing the built-in country table.
	CountryTablePath string

	QuoteCacheSize int
	QuoteCacheTTL  time.Duration
	RedisURL       string

	// Snapshot publishing (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string

	PlaybackInterval     time.Duration
	PlaybackSlowInterval time.Duration

	AviationThreshold float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		ForecastURL:        sharedcfg.EnvOrDefault("NOAA_FORECAST_URL", defaultForecastURL),
		CountryTablePath:   os.Getenv("COUNTRY_TABLE_PATH"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "kp-forecast-snapshots"),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"NOAA_TIMEOUT", "15s", &cfg.ForecastTimeout},
		{"REFRESH_INTERVAL", "5m", &cfg.RefreshInterval},
		{"REFRESH_MAX_BACKOFF", "40m", &cfg.RefreshMaxBackoff},
		{"QUOTE_CACHE_TTL", "5m", &cfg.QuoteCacheTTL},
		{"PLAYBACK_INTERVAL", "150ms", &cfg.PlaybackInterval},
		{"PLAYBACK_SLOW_INTERVAL", "500ms", &cfg.PlaybackSlowInterval},
	}
	for _, d := range durations {
		v, err := parsePositiveDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if cfg.QuoteCacheSize, err = parseCacheSize(); err != nil {
		return nil, err
	}
	if cfg.AviationThreshold, err = parseAviationThreshold(); err != nil {
		return nil, err
	}

	if cfg.ForecastURL == "" {
		return nil, errors.New("NOAA_FORECAST_URL is required")
	}
	if cfg.RefreshMaxBackoff < cfg.RefreshInterval {
		return nil, errors.New("REFRESH_MAX_BACKOFF must not be shorter than REFRESH_INTERVAL")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSnapshotTopic == "" {
			return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() (int, error) {
	s := os.Getenv("QUOTE_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid QUOTE_CACHE_SIZE")
	}
	return n, nil
}

func parseAviationThreshold() (float64, error) {
	s := os.Getenv("AVIATION_KP_THRESHOLD")
	if s == "" {
		return 4, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 9 {
		return 0, errors.New("invalid AVIATION_KP_THRESHOLD: must be within [0, 9]")
	}
	return v, nil
}
