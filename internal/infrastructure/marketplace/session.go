package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/service/pricing"
	"giftfolio/internal/domain/value"
	"giftfolio/internal/infrastructure/webapp"
	"giftfolio/internal/metrics"
	"giftfolio/pkg/errcodes"
	"giftfolio/pkg/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const searchPath = "/gifts/search"

type authenticator interface {
	Authenticate(ctx context.Context) error
	BearerToken() string
}

type listingDTO struct {
	Slug  string          `json:"slug"`
	Price decimal.Decimal `json:"price"`
}

type searchResponse struct {
	Results []listingDTO `json:"results"`
}

// Session is one authenticated marketplace identity with its own pacing.
type Session struct {
	name      string
	baseURL   string
	timeout   time.Duration
	pacing    time.Duration
	headers   http.Header
	transport http.RoundTripper
	wrap      []func(http.RoundTripper) http.RoundTripper
	base      http.RoundTripper

	auth    authenticator
	client  *http.Client
	limiter *rate.Limiter
}

func NewSession(name string, auth authenticator, opts ...Option) *Session {
	s := configure(name, opts)
	s.attach(auth)

	return s
}

// NewWebAppSession wires a session whose token comes from the WebApp bridge.
// The auth exchange shares the session transport and headers.
func NewWebAppSession(name string, provider webapp.InitDataProvider, authURL string, opts ...Option) *Session {
	s := configure(name, opts)
	s.attach(webapp.NewAuthenticator(provider, authURL, &http.Client{Transport: s.base, Timeout: s.timeout}))

	return s
}

func configure(name string, opts []Option) *Session {
	s := &Session{
		name:      name,
		timeout:   DefaultTimeout,
		pacing:    DefaultPacing,
		transport: http.DefaultTransport,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.base = s.transport
	for _, wrap := range s.wrap {
		s.base = wrap(s.base)
	}

	if s.headers != nil {
		s.base = httpx.NewHeaderRoundTripper(s.base, s.headers)
	}

	s.limiter = rate.NewLimiter(rate.Every(s.pacing), 1)

	return s
}

func (s *Session) attach(auth authenticator) {
	s.auth = auth
	s.client = &http.Client{
		Transport: httpx.NewAuthBearerRoundTripper(httpx.NewPacingRoundTripper(s.base, s.limiter), auth),
		Timeout:   s.timeout,
	}
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) Authenticate(ctx context.Context) error {
	return s.auth.Authenticate(ctx) //nolint:wrapcheck
}

// GiftPrice applies the pricing policy over this session's queries.
func (s *Session) GiftPrice(ctx context.Context, fp value.Fingerprint) (*decimal.Decimal, error) {
	return pricing.Quote(ctx, s, fp)
}

// Lowest returns the cheapest listing for the filter, or nil when none is listed.
func (s *Session) Lowest(ctx context.Context, f pricing.Filter) (*decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+searchPath+"?"+searchQuery(f).Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.MarketplaceQueries.WithLabelValues(metrics.ResultError).Inc()

		if domain.IsAppError(err) {
			return nil, err //nolint:wrapcheck
		}
		if ctx.Err() != nil {
			return nil, ctx.Err() //nolint:wrapcheck
		}
		return nil, domain.WrapError(err, errcodes.MarketplaceUnavailable, "marketplace unreachable")
	}
	defer resp.Body.Close()

	if err := webapp.StatusError(resp); err != nil {
		if errors.Is(err, domain.ErrMarketplaceRateLimited) {
			metrics.MarketplaceQueries.WithLabelValues(metrics.ResultRateLimited).Inc()
		} else {
			metrics.MarketplaceQueries.WithLabelValues(metrics.ResultError).Inc()
		}

		return nil, err
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.MarketplaceQueries.WithLabelValues(metrics.ResultError).Inc()
		return nil, domain.WrapError(err, errcodes.MarketplaceUnavailable, "marketplace response is not JSON")
	}

	for _, l := range out.Results {
		if l.Price.IsPositive() {
			price := l.Price
			metrics.MarketplaceQueries.WithLabelValues(metrics.ResultOK).Inc()

			return &price, nil
		}
	}

	metrics.MarketplaceQueries.WithLabelValues(metrics.ResultEmpty).Inc()

	return nil, nil //nolint:nilnil
}

func searchQuery(f pricing.Filter) url.Values {
	q := url.Values{}
	q.Set("gift_name", f.Collection)

	if f.Model != "" {
		q.Set("model", f.Model)
	}

	if f.Backdrop != "" {
		q.Set("backdrop", f.Backdrop)
	}

	q.Set("sort", "price_asc")
	q.Set("limit", strconv.Itoa(1))
	q.Set("offset", "0")

	return q
}
