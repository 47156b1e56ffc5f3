// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string `yaml:"token" envconfig:"BOT_TOKEN"` // empty -> resolved from the record store
	APIEndpoint string `yaml:"api_endpoint"`                // override for self-hosted Bot API servers
	Port        int    `yaml:"port" envconfig:"PORT"`
	Workers     int    `yaml:"workers"`    // per-chat dispatch workers
	QueueSize   int    `yaml:"queue_size"` // buffered events per worker
	// WebhookSecret is compared against X-Telegram-Bot-Api-Secret-Token when set.
	WebhookSecret      string        `yaml:"webhook_secret" envconfig:"WEBHOOK_SECRET"`
	RegisterTriggers   []string      `yaml:"register_triggers"`
	EventTimeout       time.Duration `yaml:"event_timeout"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"` // 0 disables, needs redis
}

type LogConfig struct {
	Level    string `yaml:"level" envconfig:"LOG_LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" envconfig:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling"`                      // enable sampling in prod
}

type RecordStoreConfig struct {
	URL           string        `yaml:"url" envconfig:"POCKETBASE_URL"`
	AdminEmail    string        `yaml:"admin_email" envconfig:"PB_ADMIN_EMAIL"`
	AdminPassword string        `yaml:"admin_password" envconfig:"PB_ADMIN_PASSWORD"`
	Timeout       time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" envconfig:"REDIS_URL"`
	Password string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // plan offering cache
}

type StateConfig struct {
	Backend       string        `yaml:"backend" envconfig:"STATE_BACKEND"` // memory|redis
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Config struct {
	Bot         BotConfig         `yaml:"bot"`
	Log         LogConfig         `yaml:"log"`
	RecordStore RecordStoreConfig `yaml:"record_store"`
	Redis       RedisConfig       `yaml:"redis"`
	State       StateConfig       `yaml:"state"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

const (
	StateBackendMemory = "memory"
	StateBackendRedis  = "redis"

	DefaultRegisterTrigger = "📝 شروع ثبت‌نام"
)

// LoadConfig reads the YAML file at path (optional when absent) and overlays environment variables.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Port <= 0 {
		cfg.Bot.Port = 3000
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.QueueSize <= 0 {
		cfg.Bot.QueueSize = 64
	}
	if cfg.Bot.EventTimeout <= 0 {
		cfg.Bot.EventTimeout = 30 * time.Second
	}
	if len(cfg.Bot.RegisterTriggers) == 0 {
		cfg.Bot.RegisterTriggers = []string{DefaultRegisterTrigger}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.RecordStore.Timeout <= 0 {
		cfg.RecordStore.Timeout = 15 * time.Second
	}
	cfg.RecordStore.URL = strings.TrimRight(strings.TrimSpace(cfg.RecordStore.URL), "/")
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL, 5*time.Minute)

	cfg.State.Backend = strings.ToLower(strings.TrimSpace(cfg.State.Backend))
	if cfg.State.Backend == "" {
		cfg.State.Backend = StateBackendMemory
	}
	cfg.State.TTL = normalizeTTL(cfg.State.TTL, 24*time.Hour)
	cfg.State.SweepInterval = normalizeTTL(cfg.State.SweepInterval, 10*time.Minute)
}

// Validate performs the minimal checks needed to start the process.
func (c *Config) Validate() error {
	if c.RecordStore.URL == "" {
		return errors.New("record_store.url is required")
	}
	if c.RecordStore.AdminEmail == "" || c.RecordStore.AdminPassword == "" {
		return errors.New("record_store.admin_email and record_store.admin_password are required")
	}
	switch c.State.Backend {
	case StateBackendMemory:
	case StateBackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis state backend")
		}
	default:
		return fmt.Errorf("unknown state.backend %q", c.State.Backend)
	}
	return nil
}

func normalizeTTL(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
