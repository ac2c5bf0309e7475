// Command portfolio-server serves portfolio pricing over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"giftfolio/internal/application"
	"giftfolio/internal/config"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
)

var version = "dev" //nolint:gochecknoglobals

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}

	log := logx.New(os.Stderr, cfg.Log.Level, cfg.Log.Format).With(
		slog.String(logx.FieldAppName, "portfolio-server"),
		slog.String(logx.FieldAppVersion, version),
	)
	slog.SetDefault(log)
	ctx = contextx.WithLogger(ctx, log)

	if err := application.Serve(ctx, cfg, version); err != nil {
		log.Error("application failed", logx.Error(err))
		cancel()
		os.Exit(1)
	}

	log.Info("application stopped")
}
