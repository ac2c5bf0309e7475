// Package webapp exchanges Telegram WebApp init data for marketplace bearer
// tokens.
package webapp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"giftfolio/internal/domain"
	"giftfolio/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const maxErrorBody = 512

// InitDataProvider signs a WebApp launch for one Telegram account.
type InitDataProvider interface {
	InitData(ctx context.Context) (string, error)
}

type InitDataFunc func(ctx context.Context) (string, error)

func (f InitDataFunc) InitData(ctx context.Context) (string, error) {
	return f(ctx)
}

type authRequest struct {
	InitData string `json:"init_data"`
}

type authResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Authenticator holds the current bearer token of one identity. It satisfies
// the authenticator used by httpx.AuthBearerRoundTripper.
type Authenticator struct {
	provider InitDataProvider
	authURL  string
	client   *http.Client

	mu    sync.RWMutex
	token string
}

func NewAuthenticator(provider InitDataProvider, authURL string, client *http.Client) *Authenticator {
	if client == nil {
		client = http.DefaultClient
	}

	return &Authenticator{
		provider: provider,
		authURL:  authURL,
		client:   client,
	}
}

func (a *Authenticator) BearerToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.token
}

// Authenticate replaces the token with a fresh one. The previous token is
// cleared first so a failed exchange never leaves a stale token behind.
func (a *Authenticator) Authenticate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.token = ""

	initData, err := a.provider.InitData(ctx)
	if err != nil {
		return domain.WrapError(err, errcodes.MarketplaceAuthRejected, "webapp init data unavailable")
	}

	body, err := json.Marshal(authRequest{InitData: initData})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.WrapError(err, errcodes.MarketplaceUnavailable, "auth endpoint unreachable")
	}
	defer resp.Body.Close()

	if err := StatusError(resp); err != nil {
		return err
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.WrapError(err, errcodes.MarketplaceUnavailable, "auth response is not JSON")
	}

	token := out.Token
	if token == "" {
		token = out.AccessToken
	}

	if token == "" {
		return domain.NewError(errcodes.MarketplaceAuthRejected, "auth endpoint returned no token")
	}

	a.token = token

	return nil
}

// StatusError maps a non-2xx marketplace response to a domain error.
func StatusError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.WrapError(cause, errcodes.MarketplaceAuthRejected, "marketplace rejected the session token")
	case http.StatusTooManyRequests:
		return domain.WrapError(cause, errcodes.MarketplaceRateLimited, "marketplace rate limit reached")
	default:
		return domain.WrapError(cause, errcodes.MarketplaceUnavailable, "marketplace request failed")
	}
}
