package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Log         Log
	Telegram    Telegram
	Database    Database
	Cache       Cache
	Marketplace Marketplace
	Feed        Feed
	Links       Links
	Server      Server
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	// HTTPDump enables wire logging of outbound marketplace and feed calls.
	HTTPDump       bool `env:"LOG_HTTP_DUMP"`
	FieldMaxLength int  `env:"LOG_FIELD_MAX_LEN" envDefault:"4096"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := Validate(config); err != nil {
		return Config{}, err
	}

	return config, nil
}

func Validate(config Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	return nil
}
