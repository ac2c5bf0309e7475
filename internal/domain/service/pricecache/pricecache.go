// Package pricecache is the two-tier fingerprint price cache: a per-run
// in-process tier in front of the shared SQL table.
package pricecache

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"giftfolio/internal/domain/value"
	"giftfolio/internal/metrics"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
)

const DefaultTTL = 10 * time.Minute

const (
	tierRun    = "run"
	tierShared = "shared"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Store interface {
	Get(ctx context.Context, key string) (decimal.Decimal, time.Time, bool, error)
	Put(ctx context.Context, key string, price decimal.Decimal, at time.Time) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Option func(*Shared)

// WithClock replaces time.Now for insertion stamps and TTL checks.
func WithClock(now func() time.Time) Option {
	return func(s *Shared) {
		s.now = now
	}
}

// Shared is tier 2. Store errors never surface: reads degrade to a miss and
// writes to a no-op.
type Shared struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewShared(store Store, ttl time.Duration, opts ...Option) *Shared {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Shared{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get ignores entries older than the TTL.
func (s *Shared) Get(ctx context.Context, fp value.Fingerprint) (decimal.Decimal, bool) {
	price, cachedAt, found, err := s.store.Get(ctx, fp.Key())
	if err != nil {
		logger(ctx).Warn("price cache read failed", slog.String(logx.FieldFingerprint, fp.Key()), logx.Error(err))
		metrics.CacheLookups.WithLabelValues(tierShared, metrics.ResultError).Inc()

		return decimal.Decimal{}, false
	}

	if !found || s.now().Sub(cachedAt) >= s.ttl {
		metrics.CacheLookups.WithLabelValues(tierShared, metrics.ResultMiss).Inc()
		return decimal.Decimal{}, false
	}

	metrics.CacheLookups.WithLabelValues(tierShared, metrics.ResultHit).Inc()

	return price, true
}

func (s *Shared) Put(ctx context.Context, fp value.Fingerprint, price decimal.Decimal) {
	if err := s.store.Put(ctx, fp.Key(), price, s.now()); err != nil {
		logger(ctx).Warn("price cache write failed", slog.String(logx.FieldFingerprint, fp.Key()), logx.Error(err))
	}
}

// Prune drops expired rows. Best effort.
func (s *Shared) Prune(ctx context.Context) {
	n, err := s.store.Prune(ctx, s.now().Add(-s.ttl))
	if err != nil {
		logger(ctx).Warn("price cache prune failed", logx.Error(err))
		return
	}

	if n > 0 {
		logger(ctx).Debug("price cache pruned", slog.Int64("rows", n))
	}
}

// NewRun starts a fresh tier 1 over this shared tier.
func (s *Shared) NewRun() *Run {
	return &Run{
		shared: s,
		local:  cache.New(s.ttl, 0),
	}
}

// Run is the two-tier view used by one portfolio assembly.
type Run struct {
	shared *Shared
	local  *cache.Cache
}

// Get reads tier 1, then tier 2; a tier-2 hit warms tier 1.
func (r *Run) Get(ctx context.Context, fp value.Fingerprint) (decimal.Decimal, bool) {
	if v, ok := r.local.Get(fp.Key()); ok {
		metrics.CacheLookups.WithLabelValues(tierRun, metrics.ResultHit).Inc()
		return v.(decimal.Decimal), true //nolint:forcetypeassert
	}

	metrics.CacheLookups.WithLabelValues(tierRun, metrics.ResultMiss).Inc()

	price, ok := r.shared.Get(ctx, fp)
	if !ok {
		return decimal.Decimal{}, false
	}

	r.Remember(fp, price)

	return price, true
}

// Remember writes tier 1 only, for prices the shared tier already holds.
func (r *Run) Remember(fp value.Fingerprint, price decimal.Decimal) {
	r.local.SetDefault(fp.Key(), price)
}
