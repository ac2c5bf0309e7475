// Package feed prices unupgradeable gifts from the auxiliary marketplaces.
package feed

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"giftfolio/internal/metrics"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

// NameSource reports floors keyed by collection name (feed A).
type NameSource interface {
	Name() string
	FloorsByName(ctx context.Context) (map[string]decimal.Decimal, error)
}

// IDSource reports floors keyed by gift id (feed B).
type IDSource interface {
	Name() string
	FloorsByID(ctx context.Context) (map[int64]decimal.Decimal, error)
}

type Catalog interface {
	IDByName(name string) (int64, bool)
	Floor(id int64) (decimal.Decimal, bool)
}

type FileCache interface {
	Get(ctx context.Context, giftID int64) (decimal.Decimal, bool)
	PutAll(ctx context.Context, prices map[int64]decimal.Decimal) error
}

type Service struct {
	a       NameSource
	b       IDSource
	catalog Catalog
	cache   FileCache
	aOnly   map[int64]struct{}
}

type Option func(*Service)

func WithSourceA(src NameSource) Option {
	return func(s *Service) {
		s.a = src
	}
}

func WithSourceB(src IDSource) Option {
	return func(s *Service) {
		s.b = src
	}
}

// WithAOnly lists gift ids that always take feed A's price, zero included.
func WithAOnly(ids ...int64) Option {
	return func(s *Service) {
		for _, id := range ids {
			s.aOnly[id] = struct{}{}
		}
	}
}

func NewService(catalog Catalog, cache FileCache, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		cache:   cache,
		aOnly:   make(map[int64]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Refresh prices every requested gift id. Feed failures are never fatal: ids
// fall through to the file cache and then to the catalog floor. A nil value
// means no source knew the id.
func (s *Service) Refresh(ctx context.Context, ids []int64) map[int64]*decimal.Decimal {
	a, b := s.fetch(ctx)

	out := make(map[int64]*decimal.Decimal, len(ids))
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		out[id] = s.merge(ctx, id, a, b)
	}

	s.persist(ctx, a, b)

	return out
}

func (s *Service) merge(ctx context.Context, id int64, a, b map[int64]decimal.Decimal) *decimal.Decimal {
	if _, ok := s.aOnly[id]; ok {
		if p, ok := a[id]; ok {
			return &p
		}
	}

	if p, ok := a[id]; ok && p.IsPositive() {
		return &p
	}

	if p, ok := b[id]; ok && p.IsPositive() {
		return &p
	}

	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return &p
		}
	}

	if s.catalog != nil {
		if p, ok := s.catalog.Floor(id); ok && p.IsPositive() {
			return &p
		}
	}

	return nil
}

// fetch queries both feeds concurrently. A failed feed yields a nil map.
func (s *Service) fetch(ctx context.Context) (a, b map[int64]decimal.Decimal) {
	var g errgroup.Group

	if s.a != nil {
		g.Go(func() error {
			byName, err := s.a.FloorsByName(ctx)
			if !s.observe(ctx, s.a.Name(), err) {
				return nil
			}
			a = s.byID(ctx, byName)
			return nil
		})
	}

	if s.b != nil {
		g.Go(func() error {
			floors, err := s.b.FloorsByID(ctx)
			if !s.observe(ctx, s.b.Name(), err) {
				return nil
			}
			b = floors
			return nil
		})
	}

	_ = g.Wait()

	return a, b
}

func (s *Service) observe(ctx context.Context, source string, err error) bool {
	if err != nil {
		metrics.FeedRefresh.WithLabelValues(source, metrics.ResultError).Inc()
		logger(ctx).Warn("feed unavailable", slog.String(logx.FieldSource, source), logx.Error(err))
		return false
	}

	metrics.FeedRefresh.WithLabelValues(source, metrics.ResultOK).Inc()
	return true
}

// byID maps collection names to gift ids through the catalog. Names without
// an exact normalized match are dropped.
func (s *Service) byID(ctx context.Context, byName map[string]decimal.Decimal) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(byName))
	if s.catalog == nil {
		return out
	}

	var unmatched int
	for name, price := range byName {
		id, ok := s.catalog.IDByName(name)
		if !ok {
			unmatched++
			continue
		}
		out[id] = price
	}

	if unmatched > 0 {
		logger(ctx).Debug("feed names without catalog match", slog.Int("count", unmatched))
	}

	return out
}

// persist stores every positive feed price, plus A-only zeros, for the next
// run's fallback.
func (s *Service) persist(ctx context.Context, a, b map[int64]decimal.Decimal) {
	if s.cache == nil || (a == nil && b == nil) {
		return
	}

	fresh := make(map[int64]decimal.Decimal, len(a)+len(b))
	for id, p := range b {
		if p.IsPositive() {
			fresh[id] = p
		}
	}
	for id, p := range a {
		_, aOnly := s.aOnly[id]
		if p.IsPositive() || aOnly {
			fresh[id] = p
		}
	}

	if err := s.cache.PutAll(ctx, fresh); err != nil {
		logger(ctx).Warn("feed cache not written", logx.Error(err))
	}
}
