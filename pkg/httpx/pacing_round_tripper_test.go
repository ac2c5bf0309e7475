package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"giftfolio/pkg/httpx"
)

func TestPacingRoundTripper(t *testing.T) {
	rq := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	const gap = 50 * time.Millisecond

	client := &http.Client{
		Transport: httpx.NewPacingRoundTripper(http.DefaultTransport, rate.NewLimiter(rate.Every(gap), 1)),
	}

	start := time.Now()

	for range 2 {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, http.NoBody)
		rq.NoError(err)

		resp, err := client.Do(req)
		rq.NoError(err)
		resp.Body.Close()
	}

	rq.GreaterOrEqual(time.Since(start), gap-10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, http.NoBody)
	rq.NoError(err)

	_, err = client.Do(req) //nolint:bodyclose
	rq.Error(err)
}
