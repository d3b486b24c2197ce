package kafka

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanishkautag/GeoStormX/internal/config"
	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
)

const testPayload = `[
	["time_tag","kp","observed","noaa_scale"],
	["2025-01-01 00:00:00","2.67","observed",null],
	["2025-01-01 03:00:00","7.33","predicted","G3"]
]`

func testSnapshot(t *testing.T) forecast.Snapshot {
	t.Helper()
	res := domain.Normalize([]byte(testPayload))
	require.Equal(t, domain.ShapeTable, res.Shape)
	return forecast.Snapshot{
		ID:        uuid.MustParse("7f1c2d9e-3b4a-4c5d-8e6f-0a1b2c3d4e5f"),
		FetchedAt: time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
		Shape:     res.Shape,
		Series:    res.Series,
		Summary:   domain.Summarize(res.Series),
		Timeline:  domain.BuildTimeline(res.Series, nil),
	}
}

func TestSerializeToMessage(t *testing.T) {
	snap := testSnapshot(t)

	msg, err := serializeToMessage(snap)
	require.NoError(t, err)

	assert.Equal(t, []byte("7f1c2d9e-3b4a-4c5d-8e6f-0a1b2c3d4e5f"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "fetched_at", msg.Headers[0].Key)
	assert.Equal(t, []byte("2025-01-01T01:00:00Z"), msg.Headers[0].Value)
	assert.Equal(t, "payload_shape", msg.Headers[1].Key)
	assert.Equal(t, []byte("table"), msg.Headers[1].Value)
	assert.Equal(t, "peak_kp", msg.Headers[2].Key)
	assert.Equal(t, []byte("7.33"), msg.Headers[2].Value)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "7f1c2d9e-3b4a-4c5d-8e6f-0a1b2c3d4e5f", body["id"])
	assert.Len(t, body["series"], 2)
	assert.Len(t, body["timeline"], 2)
}

func TestSerializeToMessage_NoPeak(t *testing.T) {
	msg, err := serializeToMessage(forecast.Snapshot{ID: uuid.New()})
	require.NoError(t, err)
	assert.Len(t, msg.Headers, 2)
}

func TestNewSnapshotWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:       []string{"broker-1:9092"},
		KafkaSnapshotTopic: "kp-forecast-snapshots",
	}
	w := NewSnapshotWriter(cfg, nil)
	assert.Equal(t, "kp-forecast-snapshots", w.writer.Topic)
	assert.Equal(t, "broker-1:9092", w.writer.Addr.String())
	require.NoError(t, w.Close())
}
