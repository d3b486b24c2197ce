//go:build integration

package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanishkautag/GeoStormX/internal/adapter/kafka"
	"github.com/kanishkautag/GeoStormX/internal/adapter/noaa"
	"github.com/kanishkautag/GeoStormX/internal/config"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
	"github.com/kanishkautag/GeoStormX/internal/observability"
)

const testSnapshotTopic = "test-kp-snapshots"

const forecastPayload = `[
	["time_tag","kp","observed","noaa_scale"],
	["2025-01-01 00:00:00","2.67","observed",null],
	["2025-01-01 03:00:00","4.33","predicted",null],
	["2025-01-01 06:00:00","7.33","predicted","G3"],
	["2025-01-01 09:00:00","5.00","predicted","G1"]
]`

// publishedSnapshot holds a deserialized message read from the snapshot topic.
type publishedSnapshot struct {
	Body struct {
		ID       string            `json:"id"`
		Shape    string            `json:"shape"`
		Series   []json.RawMessage `json:"series"`
		Timeline []struct {
			ForecastKp    float64 `json:"forecast_kp"`
			OfficialScale string  `json:"official_scale"`
		} `json:"timeline"`
		Aviation []struct {
			Kp      float64  `json:"kp"`
			Regions []string `json:"regions"`
		} `json:"aviation"`
	}
	Key     string
	Headers map[string]string
}

func readSnapshot(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedSnapshot {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from snapshot topic")

	out := publishedSnapshot{
		Key:     string(msg.Key),
		Headers: make(map[string]string, len(msg.Headers)),
	}
	for _, h := range msg.Headers {
		out.Headers[h.Key] = string(h.Value)
	}
	require.NoError(t, json.Unmarshal(msg.Value, &out.Body), "unmarshal snapshot message")
	return out
}

// TestSnapshotPublishing runs one refresh cycle against a fake NOAA endpoint
// and checks the snapshot that lands on the Kafka topic.
func TestSnapshotPublishing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSnapshotTopic)

	noaaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastPayload))
	}))
	t.Cleanup(noaaSrv.Close)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSnapshotTopic: testSnapshotTopic,
	}
	writer := kafka.NewSnapshotWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	refresher := forecast.NewRefresher(
		noaa.NewClient(noaaSrv.URL, 5*time.Second, discardLogger()),
		writer,
		discardLogger(),
		metrics,
		forecast.Options{Clock: clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC))},
	)

	snap, err := refresher.Refresh(ctx)
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSnapshotTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := readSnapshot(ctx, t, consumer)

	assert.Equal(t, snap.ID.String(), got.Key)
	assert.Equal(t, snap.ID.String(), got.Body.ID)
	assert.Equal(t, "2025-01-01T01:00:00Z", got.Headers["fetched_at"])
	assert.Equal(t, "table", got.Headers["payload_shape"])
	assert.Equal(t, "7.33", got.Headers["peak_kp"])

	assert.Equal(t, "table", got.Body.Shape)
	assert.Len(t, got.Body.Series, 4)
	require.Len(t, got.Body.Timeline, 4)
	assert.Equal(t, "7+", got.Body.Timeline[2].OfficialScale)
	require.NotEmpty(t, got.Body.Aviation)
	for _, b := range got.Body.Aviation {
		assert.GreaterOrEqual(t, b.Kp, 4.0)
		assert.NotEmpty(t, b.Regions)
	}
}

// TestSnapshotPublishing_BrokerDown checks that a publish failure is counted
// but does not fail the refresh.
func TestSnapshotPublishing_BrokerDown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	noaaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(forecastPayload))
	}))
	t.Cleanup(noaaSrv.Close)

	writer := kafka.NewSnapshotWriter(&config.Config{
		KafkaBrokers:       []string{"127.0.0.1:1"},
		KafkaSnapshotTopic: testSnapshotTopic,
	}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	refresher := forecast.NewRefresher(noaa.NewClient(noaaSrv.URL, 5*time.Second, discardLogger()), writer, discardLogger(), metrics, forecast.Options{})

	_, err := refresher.Refresh(ctx)
	require.NoError(t, err)
	require.NoError(t, refresher.CheckReadiness(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SnapshotsPublished))
}
