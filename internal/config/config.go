package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the server and worker.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL"` // empty: in-memory pending store, no stats cache
	AMQPURL     string `env:"AMQP_URL"`  // empty: in-memory queue
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	PendingTTL       time.Duration `env:"PENDING_TTL" envDefault:"15m"`
	StatsCacheTTL    time.Duration `env:"STATS_CACHE_TTL" envDefault:"10m"`
	PendingSweepCron string        `env:"PENDING_SWEEP_CRON" envDefault:"*/1 * * * *"`
	StatsRefreshCron string        `env:"STATS_REFRESH_CRON" envDefault:"0 * * * *"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

// Load reads configuration from the environment and a .env file if present.
// godotenv.Load never overrides variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)

	if cfg.PendingTTL <= 0 {
		return nil, fmt.Errorf("PENDING_TTL must be positive, got %s", cfg.PendingTTL)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}
