package pricecache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftfolio/internal/domain/service/pricecache"
	"giftfolio/internal/domain/value"
	"giftfolio/internal/infrastructure/persistence"
	"giftfolio/pkg/dbtest"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newShared(t *testing.T, c *clock) *pricecache.Shared {
	t.Helper()

	repo := persistence.NewPriceCacheRepository(dbtest.NewSQLite(t, persistence.Migrate))

	return pricecache.NewShared(repo, pricecache.DefaultTTL, pricecache.WithClock(c.Now))
}

func TestSharedTTLBoundary(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	t0 := time.Unix(1_760_000_000, 0)
	c := &clock{now: t0}
	shared := newShared(t, c)

	fp := value.NewFingerprint("LunarSnake", "Python Dev", "Roman Silver")
	shared.Put(ctx, fp, decimal.NewFromInt(15))

	c.Set(t0.Add(pricecache.DefaultTTL - time.Second))
	price, ok := shared.Get(ctx, fp)
	rq.True(ok)
	rq.True(price.Equal(decimal.NewFromInt(15)))

	c.Set(t0.Add(pricecache.DefaultTTL + time.Second))
	_, ok = shared.Get(ctx, fp)
	rq.False(ok)
}

func TestSharedIdempotentWrites(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	t0 := time.Unix(1_760_000_000, 0)
	c := &clock{now: t0}
	shared := newShared(t, c)

	fp := value.NewFingerprint("tamagadget", "", "roman silver")
	price := decimal.RequireFromString("3.25")

	shared.Put(ctx, fp, price)
	shared.Put(ctx, fp, price)

	c.Set(t0.Add(time.Minute))

	got, ok := shared.Get(ctx, fp)
	rq.True(ok)
	rq.True(got.Equal(price))
}

func TestSharedPrune(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewPriceCacheRepository(dbtest.NewSQLite(t, persistence.Migrate))

	t0 := time.Unix(1_760_000_000, 0)
	c := &clock{now: t0}
	shared := pricecache.NewShared(repo, pricecache.DefaultTTL, pricecache.WithClock(c.Now))

	stale := value.NewFingerprint("a", "", "")
	shared.Put(ctx, stale, decimal.NewFromInt(1))

	c.Set(t0.Add(pricecache.DefaultTTL + time.Minute))
	fresh := value.NewFingerprint("b", "", "")
	shared.Put(ctx, fresh, decimal.NewFromInt(2))

	shared.Prune(ctx)

	_, _, found, err := repo.Get(ctx, stale.Key())
	rq.NoError(err)
	rq.False(found)

	_, _, found, err = repo.Get(ctx, fresh.Key())
	rq.NoError(err)
	rq.True(found)
}

func TestRunReadThrough(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	c := &clock{now: time.Unix(1_760_000_000, 0)}
	shared := newShared(t, c)

	fp := value.NewFingerprint("lunarsnake", "python dev", "")
	shared.Put(ctx, fp, decimal.NewFromInt(12))

	run := shared.NewRun()

	price, ok := run.Get(ctx, fp)
	rq.True(ok)
	rq.True(price.Equal(decimal.NewFromInt(12)))

	c.Set(c.Now().Add(pricecache.DefaultTTL))

	_, ok = shared.Get(ctx, fp)
	rq.False(ok)

	price, ok = run.Get(ctx, fp)
	rq.True(ok, "tier-2 hit warms tier 1")
	rq.True(price.Equal(decimal.NewFromInt(12)))

	remembered := value.NewFingerprint("plushpepe", "", "")
	run.Remember(remembered, decimal.NewFromInt(5000))

	_, ok = run.Get(ctx, remembered)
	rq.True(ok)

	_, ok = shared.Get(ctx, remembered)
	rq.False(ok, "Remember is tier 1 only")

	fresh := shared.NewRun()
	_, ok = fresh.Get(ctx, remembered)
	rq.False(ok, "tier 1 dies with the run")
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (decimal.Decimal, time.Time, bool, error) {
	return decimal.Decimal{}, time.Time{}, false, errors.New("disk I/O error")
}

func (brokenStore) Put(context.Context, string, decimal.Decimal, time.Time) error {
	return errors.New("database is locked")
}

func (brokenStore) Prune(context.Context, time.Time) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestStoreErrorsDegradeToMiss(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	shared := pricecache.NewShared(brokenStore{}, 0)

	fp := value.NewFingerprint("a", "b", "c")

	rq.NotPanics(func() {
		shared.Put(ctx, fp, decimal.NewFromInt(1))
		shared.Prune(ctx)
	})

	_, ok := shared.Get(ctx, fp)
	rq.False(ok)

	run := shared.NewRun()
	run.Put(ctx, fp, decimal.NewFromInt(1))

	price, ok := run.Get(ctx, fp)
	rq.True(ok, "tier 1 still serves the run")
	rq.True(price.Equal(decimal.NewFromInt(1)))
}
