package marketplace

import (
	"net/http"
	"time"

	"giftfolio/pkg/httpx"
	"giftfolio/pkg/logx"
)

const (
	DefaultTimeout = 60 * time.Second
	DefaultPacing  = 300 * time.Millisecond
)

type Option func(*Session)

func WithBaseURL(baseURL string) Option {
	return func(s *Session) {
		s.baseURL = baseURL
	}
}

// WithTimeout bounds each query including a reauth retry.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithHeaders replaces the browser-like header set.
func WithHeaders(h http.Header) Option {
	return func(s *Session) {
		s.headers = h
	}
}

// WithPacing sets the minimum gap between outbound queries.
func WithPacing(d time.Duration) Option {
	return func(s *Session) {
		s.pacing = d
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.transport = rt
	}
}

// WithWireLogging dumps every exchange at debug level with secrets masked.
func WithWireLogging(fieldMaxLen int) Option {
	return func(s *Session) {
		s.wrap = append(s.wrap, func(next http.RoundTripper) http.RoundTripper {
			return httpx.NewLoggingRoundTripper(
				next,
				httpx.WithSource("marketplace"),
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithLogFieldMaxLen(fieldMaxLen),
			)
		})
	}
}
