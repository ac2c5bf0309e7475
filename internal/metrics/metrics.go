package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "giftfolio"

const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultEmpty       = "empty"
	ResultRateLimited = "rate_limited"
	ResultHit         = "hit"
	ResultMiss        = "miss"
	ResultFallback    = "fallback"
)

//nolint:gochecknoglobals
var (
	MarketplaceQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "marketplace",
		Name:      "queries_total",
		Help:      "Filtered marketplace queries by outcome.",
	}, []string{"result"})

	MarketplaceSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "marketplace",
		Name:      "live_sessions",
		Help:      "Authenticated sessions currently in the pool.",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "price_cache",
		Name:      "lookups_total",
		Help:      "Price cache lookups by tier and outcome.",
	}, []string{"tier", "result"})

	WaveBatchSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "orchestrator",
		Name:      "batch_size",
		Help:      "Batch size of the last dispatched wave.",
	})

	PricedGifts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orchestrator",
		Name:      "fingerprints_total",
		Help:      "Fingerprints by how their price was obtained.",
	}, []string{"result"})

	FeedRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "refresh_total",
		Help:      "Auxiliary feed fetches by source and outcome.",
	}, []string{"source", "result"})

	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "portfolio",
		Name:      "runs_total",
		Help:      "Portfolio assemblies by outcome: ok, or the error code of a failed run.",
	}, []string{"result"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "portfolio",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a portfolio assembly.",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160},
	})
)
