package logging

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

// WithAttrs returns a context whose logger carries attrs in addition to any
// already attached.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// FromContext returns the default logger decorated with the context attrs.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	for _, attr := range attrs {
		logger = logger.With(attr)
	}
	return logger
}
