package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/value"
	"giftfolio/internal/metrics"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
)

const DefaultAuthTimeout = 5 * time.Second

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type PoolOption func(*Pool)

func WithAuthTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		p.authTimeout = d
	}
}

// Pool serves queries round-robin over the sessions that authenticated.
// Authentication happens once, on first use.
type Pool struct {
	configured  []*Session
	authTimeout time.Duration

	initMu      sync.Mutex
	initialized bool

	mu     sync.Mutex
	live   []*Session
	cursor uint64
}

func NewPool(sessions []*Session, opts ...PoolOption) *Pool {
	p := &Pool{
		configured:  sessions,
		authTimeout: DefaultAuthTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Init authenticates every configured session in parallel, each under its own
// timeout. Failures are logged and skipped. Only the first call does work, and
// it ignores the caller's cancellation so a short-lived first caller cannot
// leave the pool degraded for the rest of the process.
func (p *Pool) Init(ctx context.Context) {
	p.initMu.Lock()
	defer p.initMu.Unlock()

	if p.initialized {
		return
	}

	ctx = context.WithoutCancel(ctx)
	ok := make([]bool, len(p.configured))

	var g errgroup.Group

	for i, s := range p.configured {
		g.Go(func() error {
			authCtx, cancel := context.WithTimeout(ctx, p.authTimeout)
			defer cancel()

			if err := s.Authenticate(authCtx); err != nil {
				logger(ctx).Warn("marketplace session skipped", slog.String(logx.FieldSession, s.Name()), logx.Error(err))
				return nil
			}

			ok[i] = true

			return nil
		})
	}

	_ = g.Wait()

	live := make([]*Session, 0, len(p.configured))
	for i, s := range p.configured {
		if ok[i] {
			live = append(live, s)
		}
	}

	p.mu.Lock()
	p.live = live
	p.mu.Unlock()

	p.initialized = true

	metrics.MarketplaceSessions.Set(float64(len(live)))

	if len(live) == 0 {
		logger(ctx).Error("marketplace pool degraded", slog.Int("configured", len(p.configured)))
		return
	}

	logger(ctx).Info("marketplace pool ready", slog.Int("live", len(live)), slog.Int("configured", len(p.configured)))
}

// Borrow hands out the next live session. Request N goes to session N mod live.
func (p *Pool) Borrow(ctx context.Context) (*Session, error) {
	p.Init(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.live) == 0 {
		return nil, domain.ErrPoolDegraded
	}

	s := p.live[p.cursor%uint64(len(p.live))]
	p.cursor++

	return s, nil
}

// Quote prices fp on the next session. A session whose token is still
// rejected after its reauth is removed for the rest of the process.
func (p *Pool) Quote(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	s, err := p.Borrow(ctx)
	if err != nil {
		return nil, err
	}

	price, err := s.GiftPrice(ctx, fp)
	if errors.Is(err, domain.ErrMarketplaceAuthRejected) {
		p.drop(ctx, s)
	}

	return price, err
}

// ParallelFetch prices every request concurrently, one in flight per live
// session. Failed lookups map to nil.
func (p *Pool) ParallelFetch(ctx context.Context, requests map[string]value.Fingerprint) map[string]*decimal.Decimal {
	result := make(map[string]*decimal.Decimal, len(requests))

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.Size(ctx)))

	for id, fp := range requests {
		g.Go(func() error {
			price, err := p.Quote(gctx, fp)
			if err != nil {
				logger(ctx).Debug("parallel fetch lookup failed", slog.String(logx.FieldFingerprint, fp.Key()), logx.Error(err))
			}

			mu.Lock()
			result[id] = price
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return result
}

// Size is the number of live sessions.
func (p *Pool) Size(ctx context.Context) int {
	p.Init(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.live)
}

func (p *Pool) drop(ctx context.Context, s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, candidate := range p.live {
		if candidate == s {
			p.live = append(p.live[:i:i], p.live[i+1:]...)
			logger(ctx).Warn("marketplace session dropped", slog.String(logx.FieldSession, s.Name()), slog.Int("live", len(p.live)))
			metrics.MarketplaceSessions.Set(float64(len(p.live)))

			return
		}
	}
}
