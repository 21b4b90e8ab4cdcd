package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// OverlayEvent is the message published when an overlay finishes loading.
type OverlayEvent struct {
	Overlay      string               `json:"overlay"`
	Title        string               `json:"title"`
	Status       domain.OverlayStatus `json:"status"`
	FailureKind  domain.FailureKind   `json:"failure_kind,omitempty"`
	Error        string               `json:"error,omitempty"`
	FeatureCount int                  `json:"feature_count"`
	CompletedAt  time.Time            `json:"completed_at"`
}

// Writer produces overlay events to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured overlay topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishOverlay serializes an overlay snapshot and writes it to the topic.
func (w *Writer) PublishOverlay(ctx context.Context, snap domain.OverlaySnapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write overlay event: %w", err)
	}
	w.logger.Debug("overlay event published", "overlay", snap.Key, "status", snap.Status)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an overlay snapshot into a Kafka message keyed
// by overlay.
func serializeToMessage(snap domain.OverlaySnapshot) (kafkago.Message, error) {
	event := OverlayEvent{
		Overlay:      snap.Key,
		Title:        snap.Title,
		Status:       snap.Status,
		FailureKind:  snap.FailureKind,
		Error:        snap.Error,
		FeatureCount: snap.FeatureCount,
	}
	if snap.CompletedAt != nil {
		event.CompletedAt = snap.CompletedAt.UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize overlay event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Overlay),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "overlay_status", Value: []byte(event.Status)},
			{Key: "completed_at", Value: []byte(event.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
