package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftfolio/internal/domain"
	"giftfolio/internal/domain/entity"
	"giftfolio/internal/domain/value"
	"giftfolio/internal/server"
	"giftfolio/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type fakeAssembler struct {
	err error
}

func (f fakeAssembler) Assemble(_ context.Context, rawPeer string) (*entity.Portfolio, error) {
	if f.err != nil {
		return nil, f.err
	}

	price := decimal.RequireFromString("15")
	g := entity.Gift{Slug: "LunarSnake-1", Num: 1, Title: "Lunar Snake", Price: &price}
	g.SetClass(entity.ClassUpgraded)

	return &entity.Portfolio{UserID: 777, Gifts: []entity.Gift{g}, TotalCount: 1, TotalValue: price}, nil
}

type fakeHistory struct {
	limit int
}

func (f *fakeHistory) History(_ context.Context, userID int64, limit int) ([]entity.Snapshot, error) {
	f.limit = limit
	return []entity.Snapshot{{
		UserID:     userID,
		Date:       "2026-10-15",
		Timestamp:  time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		TotalValue: decimal.RequireFromString("15.9"),
		GiftCount:  2,
	}}, nil
}

type fakePrices struct {
	seen []value.Fingerprint
}

func (f *fakePrices) PriceMany(_ context.Context, fps []value.Fingerprint) map[string]*decimal.Decimal {
	f.seen = fps
	price := decimal.NewFromInt(12)
	return map[string]*decimal.Decimal{fps[0].Key(): &price}
}

func newRouter(a fakeAssembler, h *fakeHistory, p *fakePrices) http.Handler {
	return server.NewServer(
		server.NewPortfolioServer(a, h),
		server.NewQuoteServer(p, 2),
	).Router(server.RouterOptions{})
}

func do(h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)

	return rec, out
}

func TestGetPortfolio(t *testing.T) {
	rq := require.New(t)

	rec, out := do(newRouter(fakeAssembler{}, &fakeHistory{}, &fakePrices{}), http.MethodGet, "/v1/portfolio/777", "")
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal(true, out["success"])
	rq.InDelta(1, out["total"], 0)
	rq.InDelta(1, out["nft_count"], 0)
	rq.InDelta(15, out["total_value"], 0)
	rq.NotEmpty(rec.Header().Get("X-Trace-Id"))
}

func TestGetPortfolioErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{
			name:   "private peer",
			err:    domain.PeerError(errcodes.PeerPrivate, "777", nil),
			status: http.StatusForbidden,
			msg:    "User ID invalid, private, or blocked: 777",
		},
		{
			name:   "unknown username",
			err:    domain.PeerError(errcodes.PeerNotFound, "nobody", nil),
			status: http.StatusNotFound,
			msg:    "User not found: nobody",
		},
		{
			name:   "session not authenticated",
			err:    domain.ErrSessionNotAuthenticated,
			status: http.StatusServiceUnavailable,
			msg:    "telegram session is not authenticated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			rec, out := do(newRouter(fakeAssembler{err: tt.err}, &fakeHistory{}, &fakePrices{}), http.MethodGet, "/v1/portfolio/777", "")
			rq.Equal(tt.status, rec.Code)
			rq.Equal(false, out["success"])
			rq.Equal(tt.msg, out["error"])
			rq.Equal(rec.Header().Get("X-Trace-Id"), out["supportId"])
		})
	}
}

func TestGetSnapshots(t *testing.T) {
	rq := require.New(t)

	history := &fakeHistory{}
	router := newRouter(fakeAssembler{}, history, &fakePrices{})

	rec, out := do(router, http.MethodGet, "/v1/snapshots/777?limit=7", "")
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal(7, history.limit)
	rq.Len(out["snapshots"], 1)

	rec, _ = do(router, http.MethodGet, "/v1/snapshots/abc", "")
	rq.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = do(router, http.MethodGet, "/v1/snapshots/777?limit=0", "")
	rq.Equal(http.StatusBadRequest, rec.Code)
}

func TestPostQuotes(t *testing.T) {
	rq := require.New(t)

	prices := &fakePrices{}
	router := newRouter(fakeAssembler{}, &fakeHistory{}, prices)

	rec, out := do(router, http.MethodPost, "/v1/quotes",
		`{"items":[{"gift_name":"Lunar Snake","model":"Python Dev","backdrop":"Roman Silver"},{"gift_name":"Plush Pepe"}]}`)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("lunarsnake|python dev|roman silver", prices.seen[0].Key())

	quotes, ok := out["quotes"].([]any)
	rq.True(ok)
	rq.Len(quotes, 2)
	first, _ := quotes[0].(map[string]any)
	rq.InDelta(12, first["price"], 0)
	second, _ := quotes[1].(map[string]any)
	rq.Nil(second["price"])

	rec, _ = do(router, http.MethodPost, "/v1/quotes", `{"items":[]}`)
	rq.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = do(router, http.MethodPost, "/v1/quotes", `{"items":[{"gift_name":"a"},{"gift_name":"b"},{"gift_name":"c"}]}`)
	rq.Equal(http.StatusBadRequest, rec.Code)

	rec, _ = do(router, http.MethodPost, "/v1/quotes", `{"items":[{"model":"x"}]}`)
	rq.Equal(http.StatusBadRequest, rec.Code)
}
