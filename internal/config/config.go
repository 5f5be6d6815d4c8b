package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration, read from the environment.
type Config struct {
	Addr string `envconfig:"APP_ADDR" default:":2323"`

	// DATABASE_URL is optional; without it quote history is not recorded.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// REDIS_ADDR is optional; without it the last-good payload cache is off.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	WeekdayRatesURL string        `envconfig:"WEEKDAY_RATES_URL" required:"true"`
	WeekendRatesURL string        `envconfig:"WEEKEND_RATES_URL" required:"true"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"30m"`
	SourceTimeout   time.Duration `envconfig:"RATE_SOURCE_TIMEOUT" default:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
