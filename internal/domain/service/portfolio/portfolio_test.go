package portfolio_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/service/feed"
	"giftfolio/internal/domain/service/orchestrator"
	"giftfolio/internal/domain/service/portfolio"
	"giftfolio/internal/domain/service/pricecache"
	"giftfolio/internal/domain/service/pricing"
	"giftfolio/internal/domain/value"
	"giftfolio/internal/infrastructure/catalog"
	"giftfolio/internal/infrastructure/persistence"
	"giftfolio/pkg/dbtest"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/sleeper"
)

const gravestoneID = int64(5775955135867913556)

var testLinks = portfolio.Links{ //nolint:gochecknoglobals
	UpgradedImage:   "https://nft.fragment.com/gift/%s.webp",
	UnupgradedImage: "https://cdn.changes.tg/gifts/originals/%d/Original.png",
	DeepLink:        "https://t.me/nft/%s",
}

type fakeTelegram struct {
	authErr    error
	resolveErr error
	pageErr    error
	pages      []entity.GiftPage
	offsets    []string
}

func (f *fakeTelegram) EnsureAuthorized(context.Context) error {
	return f.authErr
}

func (f *fakeTelegram) ResolvePeer(_ context.Context, ref value.PeerRef) (value.Peer, error) {
	if f.resolveErr != nil {
		return value.Peer{}, f.resolveErr
	}
	return value.Peer{Kind: value.PeerUser, ID: 777, AccessHash: 1}, nil
}

func (f *fakeTelegram) SavedGiftsPage(_ context.Context, _ value.Peer, offset string, limit int) (entity.GiftPage, error) {
	if limit != portfolio.PageSize {
		return entity.GiftPage{}, errors.New("unexpected page size")
	}
	if f.pageErr != nil {
		return entity.GiftPage{}, f.pageErr
	}

	f.offsets = append(f.offsets, offset)
	i := len(f.offsets) - 1
	if i >= len(f.pages) {
		return entity.GiftPage{}, nil
	}

	return f.pages[i], nil
}

// fakeMarket answers filtered queries from a table and counts them.
type fakeMarket struct {
	mu     sync.Mutex
	prices map[pricing.Filter]string
	err    error
	calls  int
}

func (m *fakeMarket) Lowest(_ context.Context, f pricing.Filter) (*decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	p, ok := m.prices[f]
	if !ok {
		return nil, nil //nolint:nilnil
	}

	price := decimal.RequireFromString(p)
	return &price, nil
}

func (m *fakeMarket) Quote(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	return pricing.Quote(ctx, m, fp)
}

func (m *fakeMarket) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

type feedA map[string]decimal.Decimal

func (f feedA) Name() string { return "A" }

func (f feedA) FloorsByName(context.Context) (map[string]decimal.Decimal, error) {
	return f, nil
}

type harness struct {
	assembler *portfolio.Assembler
	market    *fakeMarket
	snapshots *persistence.SnapshotRepository
}

func newHarness(t *testing.T, tg *fakeTelegram, market *fakeMarket) harness {
	t.Helper()

	db := dbtest.NewSQLite(t, persistence.Migrate)
	shared := pricecache.NewShared(persistence.NewPriceCacheRepository(db), pricecache.DefaultTTL)

	c, err := catalog.Parse([]byte(`{"5775955135867913556": {"short_name": "Gravestone", "full_name": "Gravestone", "supply": 1, "floor_price": 0.4}}`))
	require.NoError(t, err)

	feeds := feed.NewService(c, nil, feed.WithSourceA(feedA{"Gravestone": decimal.RequireFromString("0.9")}))

	fake := &sleeper.Fake{}
	resolver := pricing.NewResolver(market, shared, pricing.WithSleeper(fake))
	orch := orchestrator.New(resolver, orchestrator.WithSleeper(fake))

	snapshots := persistence.NewSnapshotRepository(db)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	return harness{
		assembler: portfolio.NewAssembler(tg, feeds, orch, shared, snapshots,
			portfolio.WithLinks(testLinks), portfolio.WithClock(func() time.Time { return now })),
		market:    market,
		snapshots: snapshots,
	}
}

func lunarSnake(num int) entity.Gift {
	g := entity.Gift{
		Slug:     "LunarSnake-121736",
		Num:      num,
		Title:    "Lunar Snake",
		Model:    &value.Attribute{Name: "Python Dev", RarityPermille: 12},
		Backdrop: &value.Attribute{Name: "Roman Silver", RarityPermille: 20},
		Pattern:  &value.Attribute{Name: "Scales", RarityPermille: 5},
	}
	g.SetClass(entity.ClassUpgraded)
	return g
}

func gravestone() entity.Gift {
	g := entity.Gift{GiftID: gravestoneID, Title: "Gravestone"}
	g.SetClass(entity.ClassUnupgradeable)
	return g
}

func TestAssembleHappyPath(t *testing.T) {
	rq := require.New(t)

	tg := &fakeTelegram{pages: []entity.GiftPage{{
		Gifts: []entity.Gift{lunarSnake(121736), gravestone()},
		Count: 2,
	}}}
	market := &fakeMarket{prices: map[pricing.Filter]string{
		{Collection: "lunarsnake", Model: "python dev"}:                           "12.0",
		{Collection: "lunarsnake", Model: "python dev", Backdrop: "roman silver"}: "15.0",
	}}
	h := newHarness(t, tg, market)

	p, err := h.assembler.Assemble(context.Background(), "777")
	rq.NoError(err)

	res := portfolio.NewResult(p)
	rq.True(res.Success)
	rq.Equal(2, res.Total)
	rq.Equal(1, res.NFTCount)
	rq.True(res.TotalValue.Equal(decimal.RequireFromString("15.9")))

	rq.True(res.Gifts[0].Price.Equal(decimal.RequireFromString("15")))
	rq.Equal("https://nft.fragment.com/gift/lunarsnake-121736.webp", res.Gifts[0].ImageURL)
	rq.Equal("https://t.me/nft/LunarSnake-121736", res.Gifts[0].Link)
	rq.True(res.Gifts[1].Price.Equal(decimal.RequireFromString("0.9")))
	rq.Equal("https://cdn.changes.tg/gifts/originals/5775955135867913556/Original.png", res.Gifts[1].ImageURL)

	snap, err := h.snapshots.Get(context.Background(), 777, "2026-10-15")
	rq.NoError(err)
	rq.Equal(2, snap.GiftCount)
	rq.True(snap.TotalValue.Equal(decimal.RequireFromString("15.9")))
	rq.True(snap.UnupgradedValue.Equal(decimal.RequireFromString("0.9")))

	// a second run the same day is served from the shared cache
	calls := h.market.count()
	_, err = h.assembler.Assemble(context.Background(), "777")
	rq.NoError(err)
	rq.Equal(calls, h.market.count())
}

func TestAssembleSpecialBackdrop(t *testing.T) {
	rq := require.New(t)

	g := lunarSnake(7)
	g.Backdrop = &value.Attribute{Name: "Onyx Black"}

	tg := &fakeTelegram{pages: []entity.GiftPage{{Gifts: []entity.Gift{g}, Count: 1}}}
	market := &fakeMarket{prices: map[pricing.Filter]string{
		{Collection: "lunarsnake", Model: "python dev"}:                         "20.0",
		{Collection: "lunarsnake", Model: "python dev", Backdrop: "onyx black"}: "5.0",
	}}

	p, err := newHarness(t, tg, market).assembler.Assemble(context.Background(), "@holder")
	rq.NoError(err)
	rq.True(p.Gifts[0].Price.Equal(decimal.NewFromInt(5)))
	rq.Equal("https://nft.fragment.com/gift/lunarsnake-121736-7.webp", p.Gifts[0].ImageURL)
}

func TestAssemblePartialSuccess(t *testing.T) {
	rq := require.New(t)

	unupgraded := entity.Gift{GiftID: 42, Title: "Durov's Cap"}
	unupgraded.SetClass(entity.ClassUnupgraded)

	tg := &fakeTelegram{pages: []entity.GiftPage{{
		Gifts: []entity.Gift{lunarSnake(1), unupgraded},
		Count: 2,
	}}}
	market := &fakeMarket{err: domain.WrapError(errors.New("boom"), errcodes.MarketplaceUnavailable, "marketplace unreachable")}

	p, err := newHarness(t, tg, market).assembler.Assemble(context.Background(), "777")
	rq.NoError(err)

	res := portfolio.NewResult(p)
	rq.True(res.Success)
	rq.True(res.TotalValue.IsZero())
	for _, g := range res.Gifts {
		rq.Nil(g.Price)
	}
}

func TestAssembleFatalErrors(t *testing.T) {
	privateErr := domain.PeerError(errcodes.PeerPrivate, "777", errors.New("PEER_ID_INVALID"))

	tests := []struct {
		name    string
		tg      *fakeTelegram
		code    string
		message string
	}{
		{
			name:    "unauthenticated session",
			tg:      &fakeTelegram{authErr: domain.ErrSessionNotAuthenticated},
			code:    string(errcodes.SessionNotAuthenticated),
			message: "telegram session is not authenticated",
		},
		{
			name:    "private peer on resolve",
			tg:      &fakeTelegram{resolveErr: privateErr},
			code:    string(errcodes.PeerPrivate),
			message: "User ID invalid, private, or blocked: 777",
		},
		{
			name:    "private peer on enumeration",
			tg:      &fakeTelegram{pageErr: domain.PeerError(errcodes.PeerPrivate, "1", nil)},
			code:    string(errcodes.PeerPrivate),
			message: "User ID invalid, private, or blocked: 777",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			market := &fakeMarket{}
			_, err := newHarness(t, tt.tg, market).assembler.Assemble(context.Background(), "777")
			rq.Error(err)

			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(tt.code, string(code))

			res := portfolio.NewFailureResult(err)
			rq.False(res.Success)
			rq.Equal(tt.message, res.Error)
			rq.Zero(market.count())
		})
	}
}

func TestEnumeratePages(t *testing.T) {
	rq := require.New(t)

	page := func(n int, next string) entity.GiftPage {
		gifts := make([]entity.Gift, n)
		for i := range gifts {
			gifts[i] = gravestone()
		}
		return entity.GiftPage{Gifts: gifts, Count: 230, NextOffset: next}
	}

	tg := &fakeTelegram{pages: []entity.GiftPage{page(100, "a"), page(100, "b"), page(30, "c"), page(5, "d")}}

	gifts, declared, err := portfolio.Enumerate(context.Background(), tg, value.Peer{ID: 1}, value.ParsePeerRef("1"), testLinks)
	rq.NoError(err)
	rq.Equal(230, declared)
	rq.Len(gifts, 230)
	rq.Equal([]string{"", "a", "b"}, tg.offsets)
}

func TestEnumerateStopsOnEmptyCursor(t *testing.T) {
	rq := require.New(t)

	tg := &fakeTelegram{pages: []entity.GiftPage{
		{Gifts: []entity.Gift{gravestone()}, Count: 500, NextOffset: ""},
	}}

	gifts, declared, err := portfolio.Enumerate(context.Background(), tg, value.Peer{ID: 1}, value.ParsePeerRef("1"), portfolio.Links{})
	rq.NoError(err)
	rq.Equal(500, declared)
	rq.Len(gifts, 1)
	rq.Len(tg.offsets, 1)
	rq.Empty(gifts[0].ImageURL)
}
