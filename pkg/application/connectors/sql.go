package connectors

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// SQL lazily connects to the database named by Driver ("sqlite" or "pgx").
type SQL struct {
	value           *sqlx.DB
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	err             error
	init            sync.Once
}

// Client connects on first use. A failed connect is remembered and returned
// to every later caller.
func (p *SQL) Client(ctx context.Context) (*sqlx.DB, error) {
	p.init.Do(func() {
		db, err := sqlx.ConnectContext(ctx, p.Driver, p.DSN)
		if err != nil {
			p.err = fmt.Errorf("sqlx.ConnectContext %s: %w", p.Driver, err)
			return
		}

		p.value = db

		p.value.SetMaxOpenConns(p.MaxOpenConns)
		p.value.SetMaxIdleConns(p.MaxIdleConns)
		p.value.SetConnMaxLifetime(p.ConnMaxLifetime)

		logger(ctx).Info(
			"database connected",
			slog.String("driver", p.Driver),
			slog.String("database", p.database()),
		)
	})

	return p.value, p.err
}

func (p *SQL) Close(ctx context.Context) {
	if p.value == nil {
		return
	}

	if err := p.value.Close(); err != nil {
		logger(ctx).Error("sqlClient.Close", logx.Error(err))
	}

	logger(ctx).Info(
		"database disconnected",
		slog.String("driver", p.Driver),
		slog.String("database", p.database()),
	)
}

// database names the target without credentials.
func (p *SQL) database() string {
	u, err := url.Parse(p.DSN)
	if err != nil {
		return p.Driver
	}

	if u.Path != "" {
		return u.Path
	}

	return u.Opaque
}
