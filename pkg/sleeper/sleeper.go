// Package sleeper abstracts context-aware waiting so pacing and backoff can be
// asserted in tests without real delays.
package sleeper

import (
	"context"
	"sync"
	"time"
)

type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Real waits on the wall clock.
type Real struct{}

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fake records requested durations and returns immediately.
type Fake struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.calls = append(f.calls, d)
	f.mu.Unlock()

	return nil
}

func (f *Fake) Calls() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]time.Duration(nil), f.calls...)
}

func (f *Fake) Total() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	var total time.Duration
	for _, d := range f.calls {
		total += d
	}

	return total
}

var (
	_ Sleeper = Real{}
	_ Sleeper = (*Fake)(nil)
)
