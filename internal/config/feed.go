package config

import "time"

type Feed struct {
	A FeedSource `envPrefix:"FEED_A_"`
	B FeedSource `envPrefix:"FEED_B_"`

	CacheFile   string        `env:"FEED_CACHE_FILE" envDefault:"storage/unupgradeable_prices.json" validate:"required"`
	CacheTTL    time.Duration `env:"FEED_CACHE_TTL" envDefault:"1h"`
	CatalogFile string        `env:"CATALOG_FILE" envDefault:"data/gift_catalog.json" validate:"required"`
	// AOnlyIDs always take feed A's price, zero included.
	AOnlyIDs []int64 `env:"FEED_A_ONLY_IDS" envSeparator:"," envDefault:"5170594532177215681,5168043875654172773,5170690322832818290"`
}

type FeedSource struct {
	URL       string        `env:"URL" validate:"omitempty,url"`
	AuthURL   string        `env:"AUTH_URL" validate:"omitempty,url"`
	Bot       string        `env:"BOT"`
	WebAppURL string        `env:"WEBAPP_URL"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

func (s FeedSource) Enabled() bool {
	return s.URL != ""
}
