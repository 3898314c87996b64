// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	HTTPAddr      string        `env:"GACHA_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"GACHA_GRPC_ADDR" envDefault:":9090"`
	ConfigDir     string        `env:"GACHA_CONFIG_DIR"`
	Game          string        `env:"GACHA_GAME" envDefault:"default"`
	LedgerDB      string        `env:"GACHA_LEDGER_DB" envDefault:"./data/ledger.db"`
	Seed          uint64        `env:"GACHA_SEED"`
	LogLevel      string        `env:"GACHA_LOG_LEVEL" envDefault:"info"`
	LogPretty     bool          `env:"GACHA_LOG_PRETTY"`
	WatchInterval time.Duration `env:"GACHA_WATCH_INTERVAL" envDefault:"2s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a Config and checks it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.WatchInterval < 0 {
		return Config{}, fmt.Errorf("GACHA_WATCH_INTERVAL must not be negative")
	}
	return cfg, nil
}
