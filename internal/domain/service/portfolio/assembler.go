// Package portfolio assembles a priced gift portfolio for one Telegram peer.
package portfolio

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/service/orchestrator"
	"giftfolio/internal/domain/service/pricecache"
	"giftfolio/internal/domain/value"
	"giftfolio/internal/metrics"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

type Telegram interface {
	GiftSource
	EnsureAuthorized(ctx context.Context) error
	ResolvePeer(ctx context.Context, ref value.PeerRef) (value.Peer, error)
}

type FeedRefresher interface {
	Refresh(ctx context.Context, ids []int64) map[int64]*decimal.Decimal
}

type Orchestrator interface {
	Run(ctx context.Context, cache orchestrator.Cache, requests []orchestrator.Request) (map[int]*decimal.Decimal, orchestrator.Report)
}

type SnapshotStore interface {
	Upsert(ctx context.Context, snapshot entity.Snapshot) error
}

type Assembler struct {
	telegram     Telegram
	feed         FeedRefresher
	orchestrator Orchestrator
	cache        *pricecache.Shared
	snapshots    SnapshotStore
	links        Links
	now          func() time.Time
}

type Option func(*Assembler)

func WithLinks(l Links) Option {
	return func(a *Assembler) {
		a.links = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

func NewAssembler(
	telegram Telegram,
	feed FeedRefresher,
	orch Orchestrator,
	cache *pricecache.Shared,
	snapshots SnapshotStore,
	opts ...Option,
) *Assembler {
	a := &Assembler{
		telegram:     telegram,
		feed:         feed,
		orchestrator: orch,
		cache:        cache,
		snapshots:    snapshots,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assemble enumerates and prices every saved gift of the peer. Pricing
// failures leave individual prices null; only session, peer and enumeration
// failures are returned as errors.
func (a *Assembler) Assemble(ctx context.Context, rawPeer string) (*entity.Portfolio, error) {
	ctx, traceID := contextx.EnsureTraceID(ctx)
	log := logger(ctx).With(slog.String(logx.FieldTraceID, traceID.String()), slog.String(logx.FieldPeer, rawPeer))
	ctx = contextx.WithLogger(ctx, log)

	started := a.now()

	p, err := a.assemble(ctx, rawPeer)

	metrics.RunDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		result := metrics.ResultError
		if code, ok := domain.GetCode(err); ok {
			result = code.String()
		}

		metrics.Runs.WithLabelValues(result).Inc()
		log.Warn("portfolio assembly failed", logx.Error(err))

		return nil, err
	}

	metrics.Runs.WithLabelValues(metrics.ResultOK).Inc()
	log.Info("portfolio assembled",
		slog.Int("gifts", len(p.Gifts)),
		slog.String("total-value", p.TotalValue.String()),
		slog.Int64(logx.FieldDurationMs, time.Since(started).Milliseconds()),
	)

	return p, nil
}

func (a *Assembler) assemble(ctx context.Context, rawPeer string) (*entity.Portfolio, error) {
	ref := value.ParsePeerRef(rawPeer)
	if ref.Raw == "" {
		return nil, domain.PeerError(errcodes.PeerInvalid, rawPeer, nil)
	}

	if err := a.telegram.EnsureAuthorized(ctx); err != nil {
		return nil, err //nolint:wrapcheck
	}

	peer, err := a.telegram.ResolvePeer(ctx, ref)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	gifts, declared, err := Enumerate(ctx, a.telegram, peer, ref, a.links)
	if err != nil {
		return nil, err
	}

	logger(ctx).Info("gifts enumerated", slog.Int("count", len(gifts)), slog.Int("declared", declared))

	a.cache.Prune(ctx)

	requests, feedIDs := pricingRequests(gifts)

	var (
		feedPrices map[int64]*decimal.Decimal
		orchPrices map[int]*decimal.Decimal
		g          errgroup.Group
	)

	g.Go(func() error {
		if len(feedIDs) > 0 {
			feedPrices = a.feed.Refresh(ctx, feedIDs)
		}
		return nil
	})

	g.Go(func() error {
		if len(requests) > 0 {
			orchPrices, _ = a.orchestrator.Run(ctx, a.cache.NewRun(), requests)
		}
		return nil
	})

	_ = g.Wait()

	for i := range gifts {
		gift := &gifts[i]
		if gift.IsUnupgradeable {
			gift.SetPrice(feedPrices[gift.GiftID])
			continue
		}
		gift.SetPrice(orchPrices[i])
	}

	p := &entity.Portfolio{
		UserID:     peer.ID,
		Gifts:      gifts,
		TotalCount: declared,
		TotalValue: entity.SumPrices(gifts),
	}

	if err := a.snapshots.Upsert(ctx, entity.NewSnapshot(p, a.now())); err != nil {
		logger(ctx).Warn("portfolio snapshot not stored", logx.Error(err))
	}

	return p, nil
}

// pricingRequests splits gifts between the marketplace and the feed.
// Unupgradeable gifts are priced by gift id, the rest by fingerprint.
func pricingRequests(gifts []entity.Gift) ([]orchestrator.Request, []int64) {
	var (
		requests []orchestrator.Request
		ids      []int64
	)

	for i := range gifts {
		if gifts[i].IsUnupgradeable {
			ids = append(ids, gifts[i].GiftID)
			continue
		}

		if fp, ok := gifts[i].Fingerprint(); ok {
			requests = append(requests, orchestrator.Request{Index: i, Fingerprint: fp})
		}
	}

	return requests, ids
}
