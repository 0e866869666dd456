package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`     // terminal bearer key
	JWTSecret  string        `yaml:"jwt_secret"`  // admin session signing key
	SessionTTL time.Duration `yaml:"session_ttl"` // admin cookie lifetime
}

// LoyaltyConfig holds the accrual and redemption knobs of the ledger core.
type LoyaltyConfig struct {
	PointsPerMinute   float64       `yaml:"points_per_minute"`
	DefaultCodeBonus  int           `yaml:"default_code_bonus"`  // for codes not linked to a promotion
	MaxSessionMinutes int           `yaml:"max_session_minutes"` // stale session cutoff
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	RedeemPerMinute   int           `yaml:"redeem_per_minute"` // redemption attempts per card
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Admin    AdminConfig    `yaml:"admin"`
	Loyalty  LoyaltyConfig  `yaml:"loyalty"`
	Telegram TelegramConfig `yaml:"telegram"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the YAML config file. Defaults are applied
// before validation so a minimal file stays minimal.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Loyalty.PointsPerMinute <= 0 {
		cfg.Loyalty.PointsPerMinute = 1
	}
	if cfg.Loyalty.DefaultCodeBonus <= 0 {
		cfg.Loyalty.DefaultCodeBonus = 50
	}
	if cfg.Loyalty.MaxSessionMinutes <= 0 {
		cfg.Loyalty.MaxSessionMinutes = 12 * 60
	}
	if cfg.Loyalty.SweepInterval <= 0 {
		cfg.Loyalty.SweepInterval = 5 * time.Minute
	}
	if cfg.Loyalty.RedeemPerMinute <= 0 {
		cfg.Loyalty.RedeemPerMinute = 10
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Admin.APIKey == "" && !dev {
		return nil, errors.New("admin.api_key is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
