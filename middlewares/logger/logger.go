package logger

import (
	"time"

	"github.com/kildevaeld/mocker/httpcontext"

	"github.com/kildevaeld/strong"
	"go.uber.org/zap"
)

func Logger() httpcontext.MiddlewareHandler {
	return LoggerWithZap(zap.L())
}

func LoggerWithZap(log *zap.Logger) httpcontext.MiddlewareHandler {
	return func(next httpcontext.HandlerFunc) httpcontext.HandlerFunc {
		return func(ctx *httpcontext.Context) error {
			start := time.Now()

			req := ctx.Request()

			entry := log.With(zap.String("request", req.URL.String()),
				zap.String("method", req.Method),
				zap.String("remote", req.RemoteAddr))

			if reqID := req.Header.Get("X-Request-Id"); reqID != "" {
				entry = entry.With(zap.String("request_id", reqID))
			}

			entry.Debug("started handling request")
			err := next(ctx)

			latency := time.Since(start)
			status := httpcontext.StatusOf(ctx, err)

			fields := []zap.Field{
				zap.Int("status", status),
				zap.String("text_status", strong.StatusText(status)),
				zap.Duration("took", latency),
				zap.Int64("measure#.latency", latency.Nanoseconds()),
			}
			if err != nil {
				entry.Info("request failed", append(fields, zap.Error(err))...)
				return err
			}

			entry.Info("completed handling request", fields...)
			return nil
		}
	}
}
