package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"giftfolio/internal/config"
	"giftfolio/internal/domain/service/portfolio"
	"giftfolio/internal/infrastructure/telegram"
	"giftfolio/internal/server"
	"giftfolio/pkg/application/modules"
	"giftfolio/pkg/logx"
)

const serviceName = "giftfolio"

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// Fetch prices one portfolio and writes the result document to out. On
// failure the failure document is written and the error returned.
func Fetch(ctx context.Context, cfg config.Config, rawPeer string, out io.Writer) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return WriteFailure(out, err)
	}
	defer app.Close(ctx)

	var result portfolio.Result

	err = app.Telegram.Run(ctx, func(ctx context.Context) error {
		p, err := app.Assembler.Assemble(ctx, rawPeer)
		if err != nil {
			return err //nolint:wrapcheck
		}

		result = portfolio.NewResult(p)

		return nil
	})
	if err != nil {
		return WriteFailure(out, err)
	}

	if err := json.NewEncoder(out).Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}

// WriteFailure writes the failure document for err to out and returns err.
func WriteFailure(out io.Writer, err error) error {
	if encErr := json.NewEncoder(out).Encode(portfolio.NewFailureResult(err)); encErr != nil {
		return errors.Join(err, encErr)
	}

	return err
}

// Serve keeps the primary session connected and serves the HTTP API, probes
// and metrics until ctx is done.
func Serve(ctx context.Context, cfg config.Config, version string) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	g, ctx := errgroup.WithContext(ctx)
	ready := make(chan struct{})

	g.Go(func() error {
		err := app.Telegram.Start(ctx, func(ctx context.Context) error {
			logger(ctx).Info("telegram session connected")
			close(ready)

			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("telegram.Start: %w", err)
		}

		return nil
	})

	// The API shares the session connection, so it must not accept requests
	// before Start has brought it up.
	select {
	case <-ready:
	case <-ctx.Done():
		return g.Wait() //nolint:wrapcheck
	}

	api := server.NewServer(
		server.NewPortfolioServer(app.Assembler, app.Snapshots),
		server.NewQuoteServer(app.Resolver, cfg.Server.MaxQuotes),
	)

	modules.HTTPServer{ShutdownTimeout: cfg.Server.ShutdownTimeout}.Run(ctx, g, &http.Server{ //nolint:gosec
		Addr: cfg.Server.ListenAddress,
		Handler: api.Router(server.RouterOptions{
			Masker:         logx.NewSensitiveDataMasker(),
			LogFieldMaxLen: cfg.Log.FieldMaxLength,
			DumpBodies:     cfg.Log.HTTPDump,
		}),
	})

	modules.ProbeServer{
		Name:          serviceName,
		Version:       version,
		ListenAddress: cfg.Server.ProbeListenAddress,
		Ready:         app.Ready,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.Server.MetricsListenAddress,
		Gatherer:      prometheus.DefaultGatherer,
	}.Run(ctx, g)

	return g.Wait() //nolint:wrapcheck
}

// Login authorizes the primary session and every pool account, prompting on
// the console for codes and passwords.
func Login(ctx context.Context, cfg config.Config) error {
	primary, poolClients, err := Clients(ctx, cfg)
	if err != nil {
		return err
	}

	clients := lo.UniqBy(append([]*telegram.Client{primary}, poolClients...), (*telegram.Client).Name)

	for _, c := range clients {
		logger(ctx).Info("logging in", slog.String(logx.FieldSession, c.Name()))

		if err := c.Login(ctx, telegram.DefaultConsoleInput()); err != nil {
			return fmt.Errorf("login %s: %w", c.Name(), err)
		}
	}

	return nil
}
