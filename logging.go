package clipfetch

import (
	"context"

	"go.uber.org/zap"
)

type loggerContextKey struct{}

// WithLogger returns a context carrying the logger, so request-scoped fields (request
// ID, route) follow the work through resolvers and strategies.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// Logger returns the logger carried by ctx, falling back to the process-wide logger.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.L()
}
