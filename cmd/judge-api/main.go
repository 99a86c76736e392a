package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/judgeflow/config"
	"github.com/spacesedan/judgeflow/internal/judge"
	"github.com/spacesedan/judgeflow/internal/logging"
	"github.com/spacesedan/judgeflow/internal/server"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger(logging.ParseLevel(os.Getenv("LOG_LEVEL")))

	settings, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gin.SetMode(settings.GinMode)

	// The server keeps running without a judge so /health stays up;
	// /evaluate then answers initialization_failed.
	var evaluator server.Evaluator
	j, err := judge.New(settings)
	if err != nil {
		slog.Error("[Main] Judge failed to initialize", slog.String("error", err.Error()))
	} else {
		evaluator = j
	}

	srv := &http.Server{
		Addr:              settings.ServerAddr,
		Handler:           server.NewRouter(evaluator),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("[Main] Starting judge API",
			slog.String("addr", settings.ServerAddr),
			slog.String("version", settings.AppVersion),
			slog.String("model", settings.Model),
			slog.Bool("offline", settings.OfflineMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("[Main] Shutting down judge API...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("[Main] Server forced to shutdown", slog.String("error", err.Error()))
	}
	slog.Info("[Main] Judge API exited")
}
