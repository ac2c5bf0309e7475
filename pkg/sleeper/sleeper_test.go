package sleeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"giftfolio/pkg/sleeper"
)

func TestRealHonoursCancellation(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleeper.Real{}.Sleep(ctx, time.Hour)

	rq.ErrorIs(err, context.Canceled)
	rq.Less(time.Since(start), time.Second)
}

func TestFakeRecords(t *testing.T) {
	rq := require.New(t)

	var fake sleeper.Fake

	rq.NoError(fake.Sleep(context.Background(), 300*time.Millisecond))
	rq.NoError(fake.Sleep(context.Background(), 500*time.Millisecond))

	rq.Equal([]time.Duration{300 * time.Millisecond, 500 * time.Millisecond}, fake.Calls())
	rq.Equal(800*time.Millisecond, fake.Total())
}
