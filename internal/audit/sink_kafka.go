package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink produces audit events to a Kafka topic. Events are keyed by
// worker ID so one worker's history lands in one partition, in order.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	log    *slog.Logger
}

// NewKafkaSink connects a producer to the given brokers.
func NewKafkaSink(brokers []string, topic string, log *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: topic, log: log}, nil
}

func (s *KafkaSink) Write(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.WorkerID),
		Value: value,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.log.Warn("audit produce failed", "action", event.Action, "error", err)
		}
	})
	return nil
}

// Close flushes pending records and releases the producer.
func (s *KafkaSink) Close() {
	s.client.Close()
}
