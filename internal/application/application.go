// Package application wires the configured components together for the
// commands.
package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"giftfolio/internal/config"
	"giftfolio/internal/domain"
	"giftfolio/internal/domain/service/feed"
	"giftfolio/internal/domain/service/orchestrator"
	"giftfolio/internal/domain/service/portfolio"
	"giftfolio/internal/domain/service/pricecache"
	"giftfolio/internal/domain/service/pricing"
	"giftfolio/internal/infrastructure/auxfeed"
	"giftfolio/internal/infrastructure/catalog"
	"giftfolio/internal/infrastructure/filecache"
	"giftfolio/internal/infrastructure/marketplace"
	"giftfolio/internal/infrastructure/persistence"
	"giftfolio/internal/infrastructure/telegram"
	"giftfolio/pkg/application/connectors"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/httpx"
	"giftfolio/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// App holds the long-lived components of one process.
type App struct {
	Telegram  *telegram.Client
	Pool      *marketplace.Pool
	Resolver  *pricing.Resolver
	Assembler *portfolio.Assembler
	Snapshots *persistence.SnapshotRepository

	sql *connectors.SQL
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	sqlConn := &connectors.SQL{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	if cfg.Database.Driver == "sqlite" {
		if err := ensureParentDir(sqliteFile(cfg.Database.DSN)); err != nil {
			return nil, err
		}
	}

	db, err := sqlConn.Client(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := persistence.Migrate(ctx, db); err != nil {
		sqlConn.Close(ctx)
		return nil, fmt.Errorf("persistence.Migrate: %w", err)
	}

	primary, poolClients, err := Clients(ctx, cfg)
	if err != nil {
		sqlConn.Close(ctx)
		return nil, err
	}

	shared := pricecache.NewShared(persistence.NewPriceCacheRepository(db), cfg.Cache.PriceTTL)
	pool := newPool(cfg, poolClients)
	resolver := pricing.NewResolver(pool, shared)
	snapshots := persistence.NewSnapshotRepository(db)

	feedService, err := newFeedService(ctx, cfg, primary)
	if err != nil {
		sqlConn.Close(ctx)
		return nil, err
	}

	assembler := portfolio.NewAssembler(
		primary,
		feedService,
		orchestrator.New(resolver),
		shared,
		snapshots,
		portfolio.WithLinks(portfolio.Links{
			UpgradedImage:   cfg.Links.UpgradedImage,
			UnupgradedImage: cfg.Links.UnupgradedImage,
			DeepLink:        cfg.Links.DeepLink,
		}),
	)

	return &App{
		Telegram:  primary,
		Pool:      pool,
		Resolver:  resolver,
		Assembler: assembler,
		Snapshots: snapshots,
		sql:       sqlConn,
	}, nil
}

func (a *App) Close(ctx context.Context) {
	a.sql.Close(ctx)
}

// Ready fails while the Telegram session is logged out or no marketplace
// session is live.
func (a *App) Ready(ctx context.Context) error {
	if err := a.Telegram.EnsureAuthorized(ctx); err != nil {
		return err //nolint:wrapcheck
	}

	if a.Pool.Size(ctx) == 0 {
		return domain.ErrPoolDegraded
	}

	return nil
}

// Clients opens the primary user session and the marketplace pool sessions.
// Without an accounts file the primary session is the only pool member.
func Clients(ctx context.Context, cfg config.Config) (*telegram.Client, []*telegram.Client, error) {
	primaryCfg := telegram.ClientConfig{
		ApiID:      cfg.Telegram.ApiID,
		ApiHash:    cfg.Telegram.ApiHash,
		Phone:      cfg.Telegram.Phone,
		Password:   cfg.Telegram.Password,
		SessionDir: cfg.Telegram.SessionDir,
		Session:    cfg.Telegram.SessionName,
		Debug:      cfg.Telegram.Debug,
	}

	primary, err := telegram.NewClient(primaryCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram.NewClient: %w", err)
	}

	accounts, err := telegram.LoadAccounts(cfg.Marketplace.AccountsFile)
	if errors.Is(err, fs.ErrNotExist) {
		logger(ctx).Info("no accounts file, pricing with the primary session only",
			slog.String(logx.FieldPath, cfg.Marketplace.AccountsFile))

		return primary, []*telegram.Client{primary}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("telegram.LoadAccounts: %w", err)
	}

	poolClients, err := telegram.NewPoolClients(primaryCfg, accounts)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram.NewPoolClients: %w", err)
	}

	logger(ctx).Info("loaded pool accounts", slog.Int("count", len(poolClients)))

	return primary, poolClients, nil
}

func newPool(cfg config.Config, clients []*telegram.Client) *marketplace.Pool {
	opts := []marketplace.Option{
		marketplace.WithBaseURL(cfg.Marketplace.BaseURL),
		marketplace.WithTimeout(cfg.Marketplace.Timeout),
		marketplace.WithPacing(cfg.Marketplace.Pacing),
		marketplace.WithHeaders(httpx.BrowserHeaders(cfg.Marketplace.UserAgent, origin(cfg.Marketplace.WebAppURL))),
	}

	if cfg.Log.HTTPDump {
		opts = append(opts, marketplace.WithWireLogging(cfg.Log.FieldMaxLength))
	}

	sessions := make([]*marketplace.Session, 0, len(clients))
	for _, c := range clients {
		sessions = append(sessions, marketplace.NewWebAppSession(
			c.Name(),
			c.WebApp(cfg.Marketplace.Bot, cfg.Marketplace.WebAppURL),
			cfg.Marketplace.AuthURL,
			opts...,
		))
	}

	return marketplace.NewPool(sessions, marketplace.WithAuthTimeout(cfg.Marketplace.AuthTimeout))
}

func newFeedService(ctx context.Context, cfg config.Config, primary *telegram.Client) (*feed.Service, error) {
	cat, err := catalog.Load(cfg.Feed.CatalogFile)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	logger(ctx).Info("gift catalog loaded", slog.Int("entries", cat.Len()))

	opts := []feed.Option{feed.WithAOnly(cfg.Feed.AOnlyIDs...)}

	if src := cfg.Feed.A; src.Enabled() {
		opts = append(opts, feed.WithSourceA(auxfeed.NewCollectionFeed(
			src.URL, primary.WebApp(src.Bot, src.WebAppURL), src.AuthURL, feedOptions(cfg, src)...,
		)))
	}

	if src := cfg.Feed.B; src.Enabled() {
		opts = append(opts, feed.WithSourceB(auxfeed.NewFloorFeed(
			src.URL, primary.WebApp(src.Bot, src.WebAppURL), src.AuthURL, feedOptions(cfg, src)...,
		)))
	}

	return feed.NewService(cat, filecache.New(cfg.Feed.CacheFile, cfg.Feed.CacheTTL), opts...), nil
}

func feedOptions(cfg config.Config, src config.FeedSource) []auxfeed.Option {
	opts := []auxfeed.Option{
		auxfeed.WithTimeout(src.Timeout),
		auxfeed.WithHeaders(httpx.BrowserHeaders(cfg.Marketplace.UserAgent, origin(src.WebAppURL))),
	}

	if cfg.Log.HTTPDump {
		opts = append(opts, auxfeed.WithWireLogging(cfg.Log.FieldMaxLength))
	}

	return opts
}

func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	return u.Scheme + "://" + u.Host
}

// sqliteFile extracts the database path from "file:path?params" or a bare path.
func sqliteFile(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if path == ":memory:" {
		return ""
	}

	return path
}

func ensureParentDir(path string) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create database dir: %w", err)
	}

	return nil
}
