package pricing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/value"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
	"giftfolio/pkg/sleeper"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 500 * time.Millisecond
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Quoter prices a fingerprint on some live marketplace session.
type Quoter interface {
	Quote(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error)
}

// BatchQuoter fans a set of fingerprints out over every live session at once.
type BatchQuoter interface {
	ParallelFetch(ctx context.Context, requests map[string]value.Fingerprint) map[string]*decimal.Decimal
}

type SharedCache interface {
	Get(ctx context.Context, fp value.Fingerprint) (decimal.Decimal, bool)
	Put(ctx context.Context, fp value.Fingerprint, price decimal.Decimal)
}

type Option func(*Resolver)

func WithSleeper(s sleeper.Sleeper) Option {
	return func(r *Resolver) {
		r.sleeper = s
	}
}

func WithAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.attempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(r *Resolver) {
		r.baseDelay = d
	}
}

// Resolver adds retries and shared-cache writes on top of the session pool.
type Resolver struct {
	quoter    Quoter
	cache     SharedCache
	sleeper   sleeper.Sleeper
	attempts  int
	baseDelay time.Duration
	inflight  singleflight.Group
}

func NewResolver(quoter Quoter, cache SharedCache, opts ...Option) *Resolver {
	r := &Resolver{
		quoter:    quoter,
		cache:     cache,
		sleeper:   sleeper.Real{},
		attempts:  DefaultAttempts,
		baseDelay: DefaultBaseDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// PriceFor returns nil with the last error once every attempt failed. A nil
// price with a nil error means nothing is listed. Concurrent calls for the same
// fingerprint share one lookup.
func (r *Resolver) PriceFor(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	v, err, _ := r.inflight.Do(fp.Key(), func() (any, error) {
		return r.priceWithRetry(ctx, fp)
	})

	price, _ := v.(*decimal.Decimal)

	return price, err //nolint:wrapcheck
}

// PriceOnce is a single attempt without backoff.
func (r *Resolver) PriceOnce(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	return r.quote(ctx, fp)
}

func (r *Resolver) priceWithRetry(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		price, err := r.quote(ctx, fp)
		if err == nil {
			return price, nil
		}

		lastErr = err

		if ctx.Err() != nil || errors.Is(err, domain.ErrPoolDegraded) || attempt == r.attempts {
			break
		}

		delay := Backoff(r.baseDelay, attempt, errors.Is(err, domain.ErrMarketplaceRateLimited))

		logger(ctx).Debug(
			"price lookup failed, retrying",
			slog.String(logx.FieldFingerprint, fp.Key()),
			slog.Int(logx.FieldAttempt, attempt),
			slog.Duration("delay", delay),
			logx.Error(err),
		)

		if err := r.sleeper.Sleep(ctx, delay); err != nil {
			break
		}
	}

	return nil, lastErr
}

func (r *Resolver) quote(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	price, err := r.quoter.Quote(ctx, fp)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if price != nil {
		r.cache.Put(ctx, fp, *price)
	}

	return price, nil
}

// PriceMany serves cached fingerprints directly and fetches the rest in one
// parallel sweep over the pool.
func (r *Resolver) PriceMany(ctx context.Context, fps []value.Fingerprint) map[string]*decimal.Decimal {
	result := make(map[string]*decimal.Decimal, len(fps))
	misses := make(map[string]value.Fingerprint)

	for _, fp := range fps {
		if price, ok := r.cache.Get(ctx, fp); ok {
			result[fp.Key()] = &price
			continue
		}

		misses[fp.Key()] = fp
		result[fp.Key()] = nil
	}

	if len(misses) == 0 {
		return result
	}

	batch, ok := r.quoter.(BatchQuoter)
	if !ok {
		for key, fp := range misses {
			result[key], _ = r.PriceFor(ctx, fp)
		}

		return result
	}

	for key, price := range batch.ParallelFetch(ctx, misses) {
		result[key] = price
		if price != nil {
			r.cache.Put(ctx, misses[key], *price)
		}
	}

	return result
}

// Backoff is base·2^(attempt-1), doubled for rate-limit rejections.
func Backoff(base time.Duration, attempt int, rateLimited bool) time.Duration {
	d := base << (attempt - 1)
	if rateLimited {
		d *= 2
	}

	return d
}
