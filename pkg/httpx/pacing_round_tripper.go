package httpx

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// PacingRoundTripper holds every outgoing request, retries included, until
// the limiter admits it.
type PacingRoundTripper struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func NewPacingRoundTripper(next http.RoundTripper, limiter *rate.Limiter) PacingRoundTripper {
	return PacingRoundTripper{
		next:    next,
		limiter: limiter,
	}
}

func (rt PacingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := rt.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("limiter.Wait: %w", err)
	}

	return rt.next.RoundTrip(req) //nolint:wrapcheck
}
