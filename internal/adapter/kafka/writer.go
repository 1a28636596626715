package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/spaceweather/internal/config"
	"github.com/couchcryptid/spaceweather/internal/poller"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces bulletin messages to a Kafka topic.
// It implements poller.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured bulletin topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes all bulletins in a single WriteMessages call. Messages are
// keyed by bulletin ID so a bulletin always lands on the same partition.
func (w *Writer) Publish(ctx context.Context, bulletins []poller.Bulletin) error {
	if len(bulletins) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(bulletins))
	for i := range bulletins {
		msg, err := serializeToMessage(bulletins[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d bulletins: %w", len(msgs), err)
	}
	w.logger.Debug("bulletins published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(b poller.Bulletin) (kafkago.Message, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize bulletin: %w", err)
	}
	issued := ""
	if t, ok := b.IssuedAt.Get(); ok {
		issued = t.Format(time.RFC3339)
	}
	return kafkago.Message{
		Key:   []byte(b.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(b.Kind)},
			{Key: "issued_at", Value: []byte(issued)},
			{Key: "observed_at", Value: []byte(b.ObservedAt.Format(time.RFC3339))},
		},
	}, nil
}
