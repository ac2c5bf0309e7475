// Package orchestrator prices a gift list through the resolver in adaptive
// parallel waves.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"giftfolio/internal/domain/value"
	"giftfolio/internal/metrics"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/logx"
	"giftfolio/pkg/sleeper"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

const (
	StableWavePause   = 300 * time.Millisecond
	UnstableWavePause = 500 * time.Millisecond
	SlowLanePace      = 200 * time.Millisecond
)

type Pricer interface {
	PriceFor(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error)
	PriceOnce(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error)
}

// Cache is the two-tier view of one run.
type Cache interface {
	Get(ctx context.Context, fp value.Fingerprint) (decimal.Decimal, bool)
	Remember(fp value.Fingerprint, price decimal.Decimal)
}

// Request asks for the price of the gift at Index.
type Request struct {
	Index       int
	Fingerprint value.Fingerprint
}

type Report struct {
	Requests  int
	CacheHits int
	Distinct  int
	Fetched   int
	SlowLane  int
	Priced    int
	WaveSizes []int
}

type Option func(*Orchestrator)

func WithSleeper(s sleeper.Sleeper) Option {
	return func(o *Orchestrator) {
		o.sleeper = s
	}
}

type Orchestrator struct {
	pricer  Pricer
	sleeper sleeper.Sleeper
}

func New(pricer Pricer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pricer:  pricer,
		sleeper: sleeper.Real{},
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

type outcome struct {
	price *decimal.Decimal
	err   error
}

// Run returns a price per request index; unpriced gifts map to nil. A
// cancelled context stops dispatching and returns what was priced so far.
func (o *Orchestrator) Run(ctx context.Context, cache Cache, requests []Request) (map[int]*decimal.Decimal, Report) {
	report := Report{Requests: len(requests)}
	result := make(map[int]*decimal.Decimal, len(requests))

	// cache sweep, then group the misses by fingerprint in first-seen order
	var order []value.Fingerprint
	waiting := make(map[value.Fingerprint][]int)

	for _, req := range requests {
		if price, ok := cache.Get(ctx, req.Fingerprint); ok {
			result[req.Index] = &price
			report.CacheHits++
			metrics.PricedGifts.WithLabelValues(metrics.ResultHit).Inc()
			continue
		}

		result[req.Index] = nil

		if _, seen := waiting[req.Fingerprint]; !seen {
			order = append(order, req.Fingerprint)
		}
		waiting[req.Fingerprint] = append(waiting[req.Fingerprint], req.Index)
	}

	report.Distinct = len(order)

	logger(ctx).Info("price cache sweep done",
		slog.Int("requests", report.Requests),
		slog.Int("cache-hits", report.CacheHits),
		slog.Int("to-fetch", report.Distinct),
	)

	prices := o.waves(ctx, order, &report)

	for _, fp := range order {
		if prices[fp] != nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			break
		}

		if report.SlowLane > 0 {
			if err := o.sleeper.Sleep(ctx, SlowLanePace); err != nil {
				break
			}
		}
		report.SlowLane++

		price, err := o.pricer.PriceOnce(ctx, fp)
		if err != nil {
			logger(ctx).Debug("slow lane lookup failed", slog.String(logx.FieldFingerprint, fp.Key()), logx.Error(err))
			continue
		}

		if price != nil {
			prices[fp] = price
			metrics.PricedGifts.WithLabelValues(metrics.ResultFallback).Inc()
		}
	}

	for _, fp := range order {
		price := prices[fp]
		if price == nil {
			metrics.PricedGifts.WithLabelValues(metrics.ResultEmpty).Inc()
			continue
		}

		cache.Remember(fp, *price)
		report.Fetched++

		for _, idx := range waiting[fp] {
			p := *price
			result[idx] = &p
		}
	}

	for _, p := range result {
		if p != nil {
			report.Priced++
		}
	}

	logger(ctx).Info(progress(report.Priced, report.Requests),
		slog.Int("distinct", report.Distinct),
		slog.Int("slow-lane", report.SlowLane),
		slog.Any("waves", report.WaveSizes),
	)

	return result, report
}

// waves resolves fingerprints in parallel waves, sequential between waves.
func (o *Orchestrator) waves(ctx context.Context, order []value.Fingerprint, report *Report) map[value.Fingerprint]*decimal.Decimal {
	prices := make(map[value.Fingerprint]*decimal.Decimal, len(order))
	sizer := NewBatchSizer()

	for start := 0; start < len(order); {
		if ctx.Err() != nil {
			break
		}

		size := min(sizer.Size(), len(order)-start)
		wave := order[start : start+size]
		outcomes := make([]outcome, len(wave))

		metrics.WaveBatchSize.Set(float64(size))
		report.WaveSizes = append(report.WaveSizes, size)

		var g errgroup.Group
		for i, fp := range wave {
			g.Go(func() error {
				price, err := o.pricer.PriceFor(ctx, fp)
				outcomes[i] = outcome{price: price, err: err}
				return nil
			})
		}
		_ = g.Wait()

		var successes, errs int
		for i, out := range outcomes {
			if out.err != nil {
				errs++
				logger(ctx).Debug("price lookup gave up",
					slog.String(logx.FieldFingerprint, wave[i].Key()),
					slog.Int(logx.FieldWave, len(report.WaveSizes)),
					logx.Error(out.err),
				)
				continue
			}

			successes++
			prices[wave[i]] = out.price
			if out.price != nil {
				metrics.PricedGifts.WithLabelValues(metrics.ResultOK).Inc()
			}
		}

		sizer.Observe(successes, errs)
		start += size

		if start >= len(order) {
			break
		}

		pause := StableWavePause
		if errs > 0 {
			pause = UnstableWavePause
		}

		if err := o.sleeper.Sleep(ctx, pause); err != nil {
			break
		}
	}

	return prices
}

func progress(priced, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(priced) * 100 / float64(total) //nolint:mnd
	}

	return fmt.Sprintf("%d/%d (%.1f%%)", priced, total, pct)
}
