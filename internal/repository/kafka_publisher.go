package repository

import (
	"context"
	"fmt"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/domain/repository"
)

// messageWriter is the subset of pkg/kafka.Producer the publisher needs.
type messageWriter interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaSignalPublisher publishes emitted signals keyed by symbol, so each
// symbol's signals stay ordered within a partition.
type KafkaSignalPublisher struct {
	w     messageWriter
	topic string
}

// NewKafkaSignalPublisher creates a Kafka-backed publisher.
func NewKafkaSignalPublisher(w messageWriter, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{w: w, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, rec *models.SignalRecord) error {
	if rec == nil {
		return fmt.Errorf("publish signal: nil record")
	}
	if err := p.w.Publish(ctx, p.topic, []byte(rec.Symbol), rec); err != nil {
		return fmt.Errorf("publish signal %s: %w", rec.ID, err)
	}
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	return p.w.Close()
}

// NoopSignalPublisher is wired when Kafka is disabled.
type NoopSignalPublisher struct{}

func NewNoopSignalPublisher() repository.SignalPublisher { return NoopSignalPublisher{} }

func (NoopSignalPublisher) Publish(context.Context, *models.SignalRecord) error { return nil }

func (NoopSignalPublisher) Close() error { return nil }
