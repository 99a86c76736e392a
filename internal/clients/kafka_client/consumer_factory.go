package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type ConsumerFunc func(context.Context, *kafka.Consumer)

// ConsumerRegistry maps a topic to the loop that consumes it.
type ConsumerRegistry struct {
	consumers map[string]ConsumerFunc
}

func NewConsumerRegistry() *ConsumerRegistry {
	return &ConsumerRegistry{consumers: make(map[string]ConsumerFunc)}
}

func (r *ConsumerRegistry) Register(topic string, fn ConsumerFunc) {
	r.consumers[topic] = fn
}

func (r *ConsumerRegistry) Lookup(topic string) (ConsumerFunc, error) {
	fn, ok := r.consumers[topic]
	if !ok {
		return nil, fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", topic)
	}
	return fn, nil
}

// Start blocks in the consumer registered for cfg.RequestTopic until ctx is
// cancelled.
func (r *ConsumerRegistry) Start(ctx context.Context, cfg KafkaConfig) error {
	consumerFunc, err := r.Lookup(cfg.RequestTopic)
	if err != nil {
		return err
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.RequestTopic))
	consumerFunc(ctx, consumer)

	return nil
}
