package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, defaultForecastURL, cfg.ForecastURL)
	assert.Equal(t, 15*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 40*time.Minute, cfg.RefreshMaxBackoff)
	assert.Empty(t, cfg.CountryTablePath)
	assert.Equal(t, 1000, cfg.QuoteCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.QuoteCacheTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "kp-forecast-snapshots", cfg.KafkaSnapshotTopic)
	assert.Equal(t, 150*time.Millisecond, cfg.PlaybackInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.PlaybackSlowInterval)
	assert.Equal(t, 4.0, cfg.AviationThreshold)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("NOAA_FORECAST_URL", "http://swpc.local/kp.json")
	t.Setenv("NOAA_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("REFRESH_MAX_BACKOFF", "10m")
	t.Setenv("COUNTRY_TABLE_PATH", "/etc/geostormx/countries.json")
	t.Setenv("QUOTE_CACHE_SIZE", "250")
	t.Setenv("QUOTE_CACHE_TTL", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "custom-snapshots")
	t.Setenv("PLAYBACK_INTERVAL", "100ms")
	t.Setenv("PLAYBACK_SLOW_INTERVAL", "1s")
	t.Setenv("AVIATION_KP_THRESHOLD", "5.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://swpc.local/kp.json", cfg.ForecastURL)
	assert.Equal(t, 3*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Minute, cfg.RefreshMaxBackoff)
	assert.Equal(t, "/etc/geostormx/countries.json", cfg.CountryTablePath)
	assert.Equal(t, 250, cfg.QuoteCacheSize)
	assert.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-snapshots", cfg.KafkaSnapshotTopic)
	assert.Equal(t, 100*time.Millisecond, cfg.PlaybackInterval)
	assert.Equal(t, time.Second, cfg.PlaybackSlowInterval)
	assert.Equal(t, 5.5, cfg.AviationThreshold)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{
		"NOAA_TIMEOUT",
		"REFRESH_INTERVAL",
		"REFRESH_MAX_BACKOFF",
		"QUOTE_CACHE_TTL",
		"PLAYBACK_INTERVAL",
		"PLAYBACK_SLOW_INTERVAL",
	} {
		t.Run(key, func(t *testing.T) {
			for _, bad := range []string{"bad", "0s", "-1s"} {
				t.Setenv(key, bad)
				_, err := Load()
				require.Error(t, err, "value %q", bad)
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}

func TestLoad_BackoffShorterThanInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "10m")
	t.Setenv("REFRESH_MAX_BACKOFF", "5m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_MAX_BACKOFF")
}

func TestLoad_InvalidCacheSize(t *testing.T) {
	for _, bad := range []string{"0", "-5", "many"} {
		t.Setenv("QUOTE_CACHE_SIZE", bad)
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "QUOTE_CACHE_SIZE")
	}
}

func TestLoad_InvalidAviationThreshold(t *testing.T) {
	for _, bad := range []string{"10", "-1", "high"} {
		t.Setenv("AVIATION_KP_THRESHOLD", bad)
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AVIATION_KP_THRESHOLD")
	}
}

func TestLoad_KafkaDisabledUnlessTrue(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "yes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
