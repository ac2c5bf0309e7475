package config

import "time"

type Links struct {
	UpgradedImage   string `env:"LINK_UPGRADED_IMAGE" envDefault:"https://nft.fragment.com/gift/%s.webp"`
	UnupgradedImage string `env:"LINK_UNUPGRADED_IMAGE" envDefault:"https://cdn.changes.tg/gifts/originals/%d/Original.png"`
	DeepLink        string `env:"LINK_DEEP" envDefault:"https://t.me/nft/%s"`
}

type Server struct {
	ListenAddress        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ProbeListenAddress   string        `env:"PROBE_ADDR" envDefault:":8081"`
	MetricsListenAddress string        `env:"METRICS_ADDR" envDefault:":9090"`
	ShutdownTimeout      time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxQuotes            int           `env:"HTTP_MAX_QUOTES" envDefault:"50" validate:"gt=0"`
}
