package auxfeed

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"

	"giftfolio/internal/infrastructure/webapp"
)

var nanoTonsPerTon = decimal.New(1, 9) //nolint:gochecknoglobals,mnd

type collectionDTO struct {
	Name               string          `json:"name"`
	FloorPriceNanoTons decimal.Decimal `json:"floorPriceNanoTons"`
}

// CollectionFeed is feed A: floors keyed by collection display name, in nanoTON.
type CollectionFeed struct {
	client  *client
	breaker *gobreaker.CircuitBreaker[map[string]decimal.Decimal]
}

func NewCollectionFeed(url string, provider webapp.InitDataProvider, authURL string, opts ...Option) *CollectionFeed {
	c := newClient("A", url, provider, authURL, opts)

	return &CollectionFeed{
		client:  c,
		breaker: newBreaker[map[string]decimal.Decimal]("feed-a", c.config.breaker),
	}
}

func (f *CollectionFeed) Name() string {
	return f.client.name
}

// FloorsByName returns TON floors keyed by the raw collection name.
func (f *CollectionFeed) FloorsByName(ctx context.Context) (map[string]decimal.Decimal, error) {
	return execute(f.breaker, func() (map[string]decimal.Decimal, error) {
		var items []collectionDTO
		if err := f.client.getJSON(ctx, &items); err != nil {
			return nil, err
		}

		out := make(map[string]decimal.Decimal, len(items))
		for _, it := range items {
			if it.Name == "" {
				continue
			}
			out[it.Name] = it.FloorPriceNanoTons.Div(nanoTonsPerTon)
		}

		return out, nil
	})
}
