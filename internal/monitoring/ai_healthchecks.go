package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MonitorModelHealth stores the backend's health in healthy on every tick
// until ctx is done. A non-positive interval falls back to HEALTHCHECK_TIMER.
func MonitorModelHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			err := checker.HealthCheck(checkCtx)
			cancel()

			wasHealthy := healthy.Swap(err == nil)
			switch {
			case err != nil:
				slog.Warn("[HealthCheck] Model backend is unhealthy", slog.String("error", err.Error()))
			case !wasHealthy:
				slog.Info("[HealthCheck] Model backend recovered")
			}
		}
	}
}
