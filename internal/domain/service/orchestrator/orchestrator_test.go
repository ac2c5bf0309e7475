package orchestrator_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/service/orchestrator"
	"giftfolio/internal/domain/value"
	"giftfolio/pkg/sleeper"
	"giftfolio/pkg/tests"
)

// fakePricer fails every fingerprint whose collection starts with "bad".
type fakePricer struct {
	mu    sync.Mutex
	price decimal.Decimal
	calls map[string]int
	once  map[string]int
}

func newFakePricer(price string) *fakePricer {
	return &fakePricer{
		price: decimal.RequireFromString(price),
		calls: make(map[string]int),
		once:  make(map[string]int),
	}
}

func (p *fakePricer) PriceFor(_ context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	p.mu.Lock()
	p.calls[fp.Key()]++
	p.mu.Unlock()

	if strings.HasPrefix(fp.Collection, "bad") {
		return nil, domain.ErrMarketplaceRateLimited
	}
	if strings.HasPrefix(fp.Collection, "empty") {
		return nil, nil //nolint:nilnil
	}

	price := p.price
	return &price, nil
}

func (p *fakePricer) PriceOnce(_ context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	p.mu.Lock()
	p.once[fp.Key()]++
	p.mu.Unlock()

	if strings.HasPrefix(fp.Collection, "badonce") {
		price := p.price
		return &price, nil
	}

	return nil, nil //nolint:nilnil
}

func (p *fakePricer) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var n int
	for _, c := range p.calls {
		n += c
	}
	return n
}

type mapCache map[value.Fingerprint]decimal.Decimal

func (c mapCache) Get(_ context.Context, fp value.Fingerprint) (decimal.Decimal, bool) {
	p, ok := c[fp]
	return p, ok
}

func (c mapCache) Remember(fp value.Fingerprint, price decimal.Decimal) {
	c[fp] = price
}

func requestsFor(collections ...string) []orchestrator.Request {
	out := make([]orchestrator.Request, 0, len(collections))
	for i, c := range collections {
		out = append(out, orchestrator.Request{Index: i, Fingerprint: value.NewFingerprint(c, "", "roman silver")})
	}
	return out
}

func TestRunDeduplicatesFingerprints(t *testing.T) {
	rq := require.New(t)

	pricer := newFakePricer("7.5")
	cache := mapCache{}
	o := orchestrator.New(pricer, orchestrator.WithSleeper(&sleeper.Fake{}))

	prices, report := o.Run(context.Background(), cache, requestsFor("TamaGadget", "tamagadget ", " TAMAGADGET"))

	rq.Equal(1, pricer.totalCalls())
	rq.Len(prices, 3)
	for i := range 3 {
		rq.NotNil(prices[i])
		rq.True(prices[i].Equal(decimal.RequireFromString("7.5")))
	}
	rq.Equal(1, report.Distinct)
	rq.Equal(3, report.Priced)
	rq.Len(cache, 1, "fetched price warms the run cache")
}

func TestRunServesCacheHits(t *testing.T) {
	rq := require.New(t)

	pricer := newFakePricer("1")
	cached := value.NewFingerprint("lunarsnake", "", "roman silver")
	cache := mapCache{cached: decimal.NewFromInt(15)}

	o := orchestrator.New(pricer, orchestrator.WithSleeper(&sleeper.Fake{}))
	prices, report := o.Run(context.Background(), cache, requestsFor("LunarSnake", "PlushPepe"))

	rq.True(prices[0].Equal(decimal.NewFromInt(15)))
	rq.True(prices[1].Equal(decimal.NewFromInt(1)))
	rq.Equal(1, report.CacheHits)
	rq.Zero(pricer.calls[cached.Key()])
}

func TestRunRateLimitDownshift(t *testing.T) {
	rq := require.New(t)

	collections := []string{
		"ok1", "bad1", "bad2", "bad3",
		"ok2", "bad4", "bad5", "bad6",
		"bad7", "bad8", "bad9",
		"bad10", "bad11",
		"bad12", "badonce13",
	}

	pricer := newFakePricer("2")
	fake := &sleeper.Fake{}
	o := orchestrator.New(pricer, orchestrator.WithSleeper(fake))

	prices, report := o.Run(context.Background(), mapCache{}, requestsFor(collections...))

	rq.Equal([]int{4, 4, 3, 2, 2}, report.WaveSizes)
	rq.NotNil(prices[0])
	rq.NotNil(prices[4])
	rq.Nil(prices[1])
	rq.NotNil(prices[14], "slow lane recovers what the waves missed")
	rq.Equal(13, report.SlowLane)
	rq.Equal(3, report.Priced)

	calls := fake.Calls()
	rq.Equal([]time.Duration{
		orchestrator.UnstableWavePause,
		orchestrator.UnstableWavePause,
		orchestrator.UnstableWavePause,
		orchestrator.UnstableWavePause,
	}, calls[:4])
	for _, d := range calls[4:] {
		rq.Equal(orchestrator.SlowLanePace, d)
	}
	rq.Len(calls[4:], 12)
}

func TestRunEmptyListingIsNotAnError(t *testing.T) {
	rq := require.New(t)

	pricer := newFakePricer("2")
	fake := &sleeper.Fake{}
	o := orchestrator.New(pricer, orchestrator.WithSleeper(fake))

	collections := []string{"empty1", "ok1", "ok2", "ok3", "ok4"}
	prices, report := o.Run(context.Background(), mapCache{}, requestsFor(collections...))

	rq.Nil(prices[0])
	rq.Equal([]int{4, 1}, report.WaveSizes)
	rq.Equal(orchestrator.StableWavePause, fake.Calls()[0])
	rq.Equal(4, report.Priced)
}

func TestRunCancelled(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pricer := newFakePricer("2")
	o := orchestrator.New(pricer, orchestrator.WithSleeper(&sleeper.Fake{}))
	prices, report := o.Run(ctx, mapCache{}, requestsFor("a", "b", "c"))

	rq.Zero(pricer.totalCalls())
	rq.Len(prices, 3)
	rq.Zero(report.Priced)
}

func TestBatchSizer(t *testing.T) {
	t.Run("downshift needs two bad waves", func(t *testing.T) {
		rq := require.New(t)

		b := orchestrator.NewBatchSizer()
		b.Observe(1, 3)
		rq.Equal(4, b.Size())
		b.Observe(1, 3)
		rq.Equal(3, b.Size())
		b.Observe(0, 3)
		rq.Equal(2, b.Size())
		b.Observe(0, 2)
		rq.Equal(2, b.Size())
	})

	t.Run("mixed wave resets the streak", func(t *testing.T) {
		rq := require.New(t)

		b := orchestrator.NewBatchSizer()
		b.Observe(1, 3)
		b.Observe(2, 2)
		b.Observe(1, 3)
		rq.Equal(4, b.Size())
	})

	t.Run("upshift after three stable waves", func(t *testing.T) {
		rq := require.New(t)

		b := orchestrator.NewBatchSizer()
		b.Observe(4, 0)
		b.Observe(4, 0)
		rq.Equal(4, b.Size())
		b.Observe(4, 0)
		rq.Equal(5, b.Size())

		for range 30 {
			b.Observe(8, 0)
		}
		rq.Equal(orchestrator.MaxBatchSize, b.Size())
	})

	t.Run("bounds hold for any outcome sequence", func(t *testing.T) {
		rq := require.New(t)
		random := tests.NewRandomizer()

		for range 200 {
			b := orchestrator.NewBatchSizer()
			for range 50 {
				size := b.Size()
				errs := random.Intn(size + 1)
				b.Observe(size-errs, errs)

				rq.GreaterOrEqual(b.Size(), orchestrator.MinBatchSize)
				rq.LessOrEqual(b.Size(), orchestrator.MaxBatchSize)
			}
		}
	})
}
