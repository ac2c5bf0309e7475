// Command portfolio-fetch prints the priced gift portfolio of one Telegram
// user as a JSON document on stdout.
package main

import (
	"context"
	"fmt"
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
	if len(os.Args) != 2 { //nolint:mnd
		fmt.Fprintln(os.Stderr, "usage: portfolio-fetch <user_id_or_username>")
		os.Exit(2) //nolint:mnd
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		_ = application.WriteFailure(os.Stdout, err)
		os.Exit(1) //nolint:gocritic
	}

	log := logx.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	ctx = contextx.WithLogger(ctx, log)

	if err := application.Fetch(ctx, cfg, os.Args[1], os.Stdout); err != nil {
		log.Error("fetch failed", logx.Error(err))
		cancel()
		os.Exit(1)
	}
}
