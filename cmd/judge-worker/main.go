package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/judgeflow/config"
	"github.com/spacesedan/judgeflow/internal/clients"
	"github.com/spacesedan/judgeflow/internal/clients/kafka_client"
	"github.com/spacesedan/judgeflow/internal/consumers"
	"github.com/spacesedan/judgeflow/internal/judge"
	"github.com/spacesedan/judgeflow/internal/logging"
	"github.com/spacesedan/judgeflow/internal/monitoring"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger(logging.ParseLevel(os.Getenv("LOG_LEVEL")))

	settings, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client, err := clients.NewModelClient(settings)
	if err != nil {
		slog.Error("[Main] Model client failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	j := judge.NewWithClient(client,
		judge.WithRetryBudget(settings.MaxRetries),
		judge.WithLexicalSignals(settings.LexicalSignals))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := kafka_client.GetKafkaConfig()

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(cfg)
		if err == nil {
			break
		}
		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	modelHealthy := &atomic.Bool{}
	modelHealthy.Store(true)
	go monitoring.MonitorModelHealth(ctx, client, modelHealthy, settings.HealthCheckInterval)

	evaluations := consumers.NewEvaluationConsumer(j, producer, cfg.ResultTopic)
	registry := kafka_client.NewConsumerRegistry()
	registry.Register(cfg.RequestTopic, consumers.WrapConsumer(evaluations.Start).
		WithHealthCheck(modelHealthy).Handler())

	if err := registry.Start(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start consumer", slog.String("error", err.Error()))
	}
}
