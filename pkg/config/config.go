package config

import (
	"fmt"
	"time"

	redis "github.com/tipraffle/tipraffle-bot/pkg/redis"
)

// Config holds runtime configuration for the tipraffle bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Logger   LoggerConfig   `mapstructure:"logger"`
	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Redis    redis.Config   `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// BotConfig configures the chat-platform connection and the watched tipping
// bot account.
type BotConfig struct {
	Token    string        `mapstructure:"token" validate:"required"`
	TipBotID int64         `mapstructure:"tip_bot_id" validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the metrics/health HTTP sidecar.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL donation audit log.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// PricingConfig configures the price provider chain. Endpoints default to
// the public APIs when empty.
type PricingConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	CoinGeckoURL     string        `mapstructure:"coingecko_url"`
	CryptoCompareURL string        `mapstructure:"cryptocompare_url"`
	CryptoCompareKey string        `mapstructure:"cryptocompare_key"`
	CoinMarketCapURL string        `mapstructure:"coinmarketcap_url"`
	CoinMarketCapKey string        `mapstructure:"coinmarketcap_key"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// JobsConfig configures the background worker and scheduler.
type JobsConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	RepairCron  string `mapstructure:"repair_cron"`
}
