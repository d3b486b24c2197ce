// Package kafka publishes forecast snapshots to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/kanishkautag/GeoStormX/internal/config"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
)

// SnapshotWriter produces one message per forecast snapshot.
// It implements forecast.Publisher.
type SnapshotWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewSnapshotWriter creates a Kafka producer for the configured snapshot topic.
func NewSnapshotWriter(cfg *config.Config, logger *slog.Logger) *SnapshotWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &SnapshotWriter{writer: w, logger: logger}
}

// Publish serializes snap and writes it to the topic.
func (w *SnapshotWriter) Publish(ctx context.Context, snap forecast.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
	}
	w.logger.Debug("snapshot published", "id", snap.ID, "bytes", len(msg.Value))
	return nil
}

func (w *SnapshotWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message keyed by its ID.
func serializeToMessage(snap forecast.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "fetched_at", Value: []byte(snap.FetchedAt.UTC().Format(time.RFC3339))},
		{Key: "payload_shape", Value: []byte(snap.Shape.String())},
	}
	if snap.Summary.Peak != nil {
		headers = append(headers, kafkago.Header{
			Key:   "peak_kp",
			Value: []byte(strconv.FormatFloat(snap.Summary.Peak.Kp, 'f', -1, 64)),
		})
	}
	return kafkago.Message{
		Key:     []byte(snap.ID.String()),
		Value:   data,
		Headers: headers,
	}, nil
}
