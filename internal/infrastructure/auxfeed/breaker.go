package auxfeed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"giftfolio/internal/domain"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/logx"
)

type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	Threshold   uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests: 1,
		Interval:    10 * time.Minute, //nolint:mnd
		Timeout:     2 * time.Minute,  //nolint:mnd
		Threshold:   3,                //nolint:mnd
	}
}

func newBreaker[T any](name string, cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger(context.Background()).Warn("feed breaker state changed",
				slog.String(logx.FieldSource, name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// execute runs fn through the breaker. An open breaker fails fast as an
// unavailable feed.
func execute[T any](cb *gobreaker.CircuitBreaker[T], fn func() (T, error)) (T, error) {
	out, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return out, domain.WrapError(err, errcodes.FeedUnavailable, "feed "+cb.Name()+" is paused after repeated failures")
	}

	return out, err
}
