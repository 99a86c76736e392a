package kafka_client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type KafkaMessageIterator struct {
	consumer *kafka.Consumer
	ctx      context.Context
}

func NewKafkaMessageIterator(ctx context.Context, consumer *kafka.Consumer) *KafkaMessageIterator {
	return &KafkaMessageIterator{
		consumer: consumer,
		ctx:      ctx,
	}
}

// Next polls until a message arrives or ctx is done. Poll timeouts are not
// failures; only read errors count against MAX_RETRIES.
func (it *KafkaMessageIterator) Next() (*kafka.Message, error) {
	if it.consumer == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	failures := 0
	for failures < MAX_RETRIES {
		select {
		case <-it.ctx.Done():
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, it.ctx.Err()
		default:
			msg, err := it.consumer.ReadMessage(POLL_TIMEOUT)
			if err == nil {
				return msg, nil
			}

			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) {
				switch kafkaErr.Code() {
				case kafka.ErrTimedOut:
					continue
				case kafka.ErrAllBrokersDown:
					slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
					return nil, err
				}
			}

			failures++
			slog.Warn("[KafkaIterator] Failed to read message, retrying...",
				slog.Int("attempt", failures),
				slog.Int("max_retries", MAX_RETRIES),
				slog.String("error", err.Error()))

			time.Sleep(RETRY_DELAY)
		}
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}
