package config

type Telegram struct {
	ApiID      int    `env:"TG_API_ID,required" validate:"gt=0"`
	ApiHash    string `env:"TG_API_HASH,required" validate:"required"`
	Phone      string `env:"TG_PHONE"`
	Password   string `env:"TG_PASSWORD"`
	SessionDir string `env:"TG_SESSION_DIR" envDefault:"storage/sessions" validate:"required"`
	// SessionName is the file stem of the primary user session.
	SessionName string `env:"TG_SESSION_NAME" envDefault:"main" validate:"required"`
	Debug       bool   `env:"TG_DEBUG"`
}
