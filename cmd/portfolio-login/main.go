// Command portfolio-login creates the Telegram session files used by the
// other commands.
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

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}

	log := logx.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	ctx = contextx.WithLogger(ctx, log)

	if err := application.Login(ctx, cfg); err != nil {
		log.Error("login failed", logx.Error(err))
		cancel()
		os.Exit(1)
	}

	log.Info("all sessions authorized")
}
