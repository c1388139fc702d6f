package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string   `env:"SERVICE_NAME"   envDefault:"academy"`
	HTTPPort      string   `env:"HTTP_PORT"      envDefault:"8080"`
	StorageDriver string   `env:"STORAGE_DRIVER" envDefault:"memory"`
	PostgresDSN   string   `env:"POSTGRES_DSN"`
	RedisURL      string   `env:"REDIS_URL"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS"  envSeparator:","`
	EventsTopic   string   `env:"EVENTS_TOPIC"   envDefault:"academy.marketplace.events"`

	OutboxPollInterval   time.Duration `env:"OUTBOX_POLL_INTERVAL"   envDefault:"2s"`
	OutboxBatchSize      int           `env:"OUTBOX_BATCH_SIZE"      envDefault:"100"`
	SettlementTimeout    time.Duration `env:"SETTLEMENT_TIMEOUT"     envDefault:"5m"`
	PurchaseLockTTL      time.Duration `env:"PURCHASE_LOCK_TTL"      envDefault:"30s"`
	WalletOpeningBalance uint64        `env:"WALLET_OPENING_BALANCE" envDefault:"1000"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.OutboxPollInterval <= 0 {
		return errors.New("OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.OutboxBatchSize <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.SettlementTimeout <= 0 {
		return errors.New("SETTLEMENT_TIMEOUT must be positive")
	}
	if c.PurchaseLockTTL <= 0 {
		return errors.New("PURCHASE_LOCK_TTL must be positive")
	}
	return nil
}

func compact(values []string) []string {
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
