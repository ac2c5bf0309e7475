package config

import "time"

type Database struct {
	// Driver is "sqlite" or "pgx".
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite pgx"`
	DSN             string        `env:"DB_DSN" envDefault:"file:storage/giftfolio.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)" json:"-" validate:"required"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"4"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type Cache struct {
	PriceTTL time.Duration `env:"PRICE_CACHE_TTL" envDefault:"10m" validate:"gt=0"`
}
