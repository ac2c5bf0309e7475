// Package auxfeed fetches floor prices of unupgradeable gifts from the two
// auxiliary marketplaces.
package auxfeed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"giftfolio/internal/domain"
	"giftfolio/internal/infrastructure/webapp"
	"giftfolio/pkg/contextx"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/httpx"
	"giftfolio/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals // skip
)

const DefaultTimeout = 20 * time.Second

type config struct {
	timeout   time.Duration
	transport http.RoundTripper
	headers   http.Header
	breaker   BreakerConfig
	wireLog   int
}

type Option func(*config)

func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		c.transport = rt
	}
}

func WithHeaders(h http.Header) Option {
	return func(c *config) {
		c.headers = h
	}
}

func WithBreaker(cfg BreakerConfig) Option {
	return func(c *config) {
		c.breaker = cfg
	}
}

// WithWireLogging dumps every exchange at debug level with secrets masked.
func WithWireLogging(fieldMaxLen int) Option {
	return func(c *config) {
		c.wireLog = fieldMaxLen
	}
}

// client is the authenticated transport shared by both feeds.
type client struct {
	name   string
	url    string
	http   *http.Client
	config config
}

func newClient(name, url string, provider webapp.InitDataProvider, authURL string, opts []Option) *client {
	cfg := config{
		timeout:   DefaultTimeout,
		transport: http.DefaultTransport,
		breaker:   DefaultBreakerConfig(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.transport
	if cfg.wireLog > 0 {
		base = httpx.NewLoggingRoundTripper(
			base,
			httpx.WithSource("feed-"+strings.ToLower(name)),
			httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
			httpx.WithLogFieldMaxLen(cfg.wireLog),
		)
	}

	if cfg.headers != nil {
		base = httpx.NewHeaderRoundTripper(base, cfg.headers)
	}

	auth := webapp.NewAuthenticator(provider, authURL, &http.Client{Transport: base, Timeout: cfg.timeout})

	return &client{
		name: name,
		url:  url,
		http: &http.Client{
			Transport: httpx.NewAuthBearerRoundTripper(base, auth),
			Timeout:   cfg.timeout,
		},
		config: cfg,
	}
}

func (c *client) getJSON(ctx context.Context, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if domain.IsAppError(err) {
			return domain.WrapError(err, errcodes.FeedUnavailable, "feed "+c.name+" authentication failed")
		}
		return domain.WrapError(err, errcodes.FeedUnavailable, "feed "+c.name+" unreachable")
	}
	defer resp.Body.Close()

	if err := webapp.StatusError(resp); err != nil {
		return domain.WrapError(err, errcodes.FeedUnavailable, "feed "+c.name+" request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(err, errcodes.FeedUnavailable, "feed "+c.name+" response is not JSON")
	}

	return nil
}
