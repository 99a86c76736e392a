// Package server exposes the judge over HTTP: GET /health and POST /evaluate.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spacesedan/judgeflow/internal/models"
)

// Evaluator is the judge as seen by the HTTP layer.
type Evaluator interface {
	Run(ctx context.Context, req models.EvaluationRequest) (*models.EvaluationResult, error)
}

// NewRouter wires the routes. A nil evaluator means the judge failed to
// initialize; /evaluate then answers initialization_failed.
func NewRouter(evaluator Evaluator) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.CustomRecovery(recoverUnexpected))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	h := &handler{evaluator: evaluator}
	router.GET("/health", h.health)
	router.POST("/evaluate", h.evaluate)

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("[HTTPServer] Request handled",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)))
	}
}

func recoverUnexpected(c *gin.Context, recovered any) {
	requestID := uuid.NewString()
	slog.Error("[HTTPServer] Unexpected server error",
		slog.String("request_id", requestID),
		slog.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:     models.ErrorUnexpected,
		Detail:    "Unexpected server error.",
		RequestID: requestID,
	})
}
