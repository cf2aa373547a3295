// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Whitelist  WhitelistConfig  `mapstructure:"whitelist"`
	Bids       BidsConfig       `mapstructure:"bids"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Timezone   string           `mapstructure:"timezone"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// BidsConfig bounds what a single bid may wager.
type BidsConfig struct {
	MinAmount int64 `mapstructure:"min_amount"`
	MaxAmount int64 `mapstructure:"max_amount"` // 0 = no maximum
}

// SettlementConfig tunes result declaration and settlement.
type SettlementConfig struct {
	Workers                 int           `mapstructure:"workers"`
	LockTimeout             time.Duration `mapstructure:"lock_timeout"`
	EagerCloseHalfSangamWin bool          `mapstructure:"eager_close_half_sangam_win"`
	PlainPanaFollowsSession bool          `mapstructure:"plain_pana_follows_session"`
}

// NotifyConfig configures win notifications.
type NotifyConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	QueueSize int  `mapstructure:"queue_size"`
	Workers   int  `mapstructure:"workers"`
}

// NATSConfig configures event publishing. An empty URL disables it.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// MetricsConfig configures the Prometheus listener. An empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, SETTLEMENT_WORKERS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "matka")
	v.SetDefault("database.name", "matka")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("bids.min_amount", 10)
	v.SetDefault("bids.max_amount", 0)

	v.SetDefault("settlement.workers", 8)
	v.SetDefault("settlement.lock_timeout", "30s")
	v.SetDefault("settlement.eager_close_half_sangam_win", true)
	v.SetDefault("settlement.plain_pana_follows_session", false)

	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.queue_size", 1024)
	v.SetDefault("notify.workers", 2)

	v.SetDefault("nats.subject_prefix", "matka")

	v.SetDefault("metrics.addr", ":9100")

	v.SetDefault("timezone", "Asia/Kolkata")
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admin.IDs, userID)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
// An empty whitelist allows every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	return slices.Contains(c.Whitelist.Chats, chatID)
}
