package auxfeed

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"giftfolio/internal/infrastructure/webapp"
)

// giftID accepts both quoted and bare ids; gift ids overflow float64 precision.
type giftID int64

func (id *giftID) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)

	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("gift id %s: %w", data, err)
	}

	*id = giftID(v)

	return nil
}

type floorDTO struct {
	ID         giftID          `json:"id"`
	FloorPrice decimal.Decimal `json:"floor_price"`
}

// FloorFeed is feed B: floors keyed by gift id, in TON.
type FloorFeed struct {
	client  *client
	breaker *gobreaker.CircuitBreaker[map[int64]decimal.Decimal]
}

func NewFloorFeed(url string, provider webapp.InitDataProvider, authURL string, opts ...Option) *FloorFeed {
	c := newClient("B", url, provider, authURL, opts)

	return &FloorFeed{
		client:  c,
		breaker: newBreaker[map[int64]decimal.Decimal]("feed-b", c.config.breaker),
	}
}

func (f *FloorFeed) Name() string {
	return f.client.name
}

func (f *FloorFeed) FloorsByID(ctx context.Context) (map[int64]decimal.Decimal, error) {
	return execute(f.breaker, func() (map[int64]decimal.Decimal, error) {
		var items []floorDTO
		if err := f.client.getJSON(ctx, &items); err != nil {
			return nil, err
		}

		out := make(map[int64]decimal.Decimal, len(items))
		for _, it := range items {
			out[int64(it.ID)] = it.FloorPrice
		}

		return out, nil
	})
}
