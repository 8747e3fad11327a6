package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/takeru0219/factiva-fetcher/internal/models"
)

// Publisher writes documents onto the Kafka topic bridging the ingester and
// the processor.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})
	return &Publisher{writer: writer, log: log}
}

// Publish sends one document and returns its message key. It errors on
// delivery failure; retry policy is the caller's decision.
func (p *Publisher) Publish(ctx context.Context, doc models.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	key := MessageKey(doc)
	msg := kafka.Message{Key: []byte(key), Value: payload}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return "", fmt.Errorf("publish document: %w", err)
	}

	p.log.Debug("document published", slog.String("key", key))
	return key, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// MessageKey keys messages by document id so one document always lands on the
// same partition. Documents without an id get a random key.
func MessageKey(doc models.Document) string {
	if doc.ID != "" {
		return doc.ID
	}
	return uuid.NewString()
}
