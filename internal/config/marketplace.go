package config

import "time"

type Marketplace struct {
	BaseURL string `env:"MARKET_BASE_URL" envDefault:"https://portals-market.com/api" validate:"required,url"`
	AuthURL string `env:"MARKET_AUTH_URL" envDefault:"https://portals-market.com/api/auth" validate:"required,url"`
	// Bot and WebAppURL identify the WebApp whose init data is exchanged for a token.
	Bot          string        `env:"MARKET_BOT" envDefault:"portals" validate:"required"`
	WebAppURL    string        `env:"MARKET_WEBAPP_URL" envDefault:"https://portals-market.com" validate:"required,url"`
	AccountsFile string        `env:"MARKET_ACCOUNTS_FILE" envDefault:"accounts.json" validate:"required"`
	Timeout      time.Duration `env:"MARKET_TIMEOUT" envDefault:"60s"`
	AuthTimeout  time.Duration `env:"MARKET_AUTH_TIMEOUT" envDefault:"5s"`
	Pacing       time.Duration `env:"MARKET_PACING" envDefault:"300ms"`
	UserAgent    string        `env:"MARKET_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"`
}
