package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/judgeflow/internal/clients/kafka_client"
)

const (
	PAUSE_DELAY  = 5 * time.Second
	SEEK_TIMEOUT = 5 * time.Second
)

type ConsumerWrapper struct {
	fn     func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool)
	health []*atomic.Bool
}

func WrapConsumer(fn func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool), health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		fn:     fn,
		health: health,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		cw.fn(ctx, consumer, cw.health...)
	}
}

func allHealthy(health []*atomic.Bool) bool {
	for _, h := range health {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}

// waitUntilHealthy blocks while any flag is false. It returns false when ctx
// ends first.
func waitUntilHealthy(ctx context.Context, delay time.Duration, health ...*atomic.Bool) bool {
	if allHealthy(health) {
		return true
	}

	slog.Warn("[ConsumerWrapper] Model backend unhealthy, pausing consumption")
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if allHealthy(health) {
				slog.Info("[ConsumerWrapper] Model backend healthy again, resuming")
				return true
			}
		}
	}
}
