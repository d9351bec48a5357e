package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// StoreDriver selects the record-store backend: "redis" or "sqlite".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"redis"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	DBPath      string `env:"DB_PATH" envDefault:"data/lobbies.db"`

	EnforceUniqueUsernames bool `env:"ENFORCE_UNIQUE_USERNAMES" envDefault:"true"`
	MutateMaxAttempts      int  `env:"MUTATE_MAX_ATTEMPTS" envDefault:"8"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
