// Package telemetry connects router hooks to structured logging, prometheus
// metrics and OpenTelemetry traces.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/config"
)

// NewLogger builds the application logger from cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Logging returns router options that log every dispatch outcome.
func Logging(logger *slog.Logger) []mvc.Option {
	logger = logger.With("component", "router")
	return []mvc.Option{
		mvc.WithOnSuccess(func(ctx context.Context, t mvc.Target, d time.Duration) {
			logger.DebugContext(ctx, "action completed",
				"controller", t.Controller,
				"action", t.Action,
				"duration", d,
			)
		}),
		mvc.WithOnFailure(func(ctx context.Context, t mvc.Target, err error, d time.Duration) {
			level := slog.LevelWarn
			if mvc.StatusOf(err) >= 500 {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "action failed",
				"controller", t.Controller,
				"action", t.Action,
				"status", mvc.StatusOf(err),
				"duration", d,
				"error", err,
			)
		}),
		mvc.WithOnNotFound(func(ctx context.Context, path string, err error) {
			logger.InfoContext(ctx, "no route", "path", path, "error", err)
		}),
	}
}
