package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration, loaded from a yaml file with
// env-var overrides for secrets
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	JWT struct {
		Secret    string        `yaml:"secret"`
		ExpiresIn time.Duration `yaml:"expires_in"`
		RefreshIn time.Duration `yaml:"refresh_in"`
	} `yaml:"jwt"`

	CORS struct {
		AllowOrigins string `yaml:"allow_origins"`
	} `yaml:"cors"`

	Scheduler struct {
		Enabled      bool          `yaml:"enabled"`
		TickInterval time.Duration `yaml:"tick_interval"`
		DedupWindow  time.Duration `yaml:"dedup_window"`
		ErrorBackoff time.Duration `yaml:"error_backoff"`
	} `yaml:"scheduler"`
}

// Load reads configuration from a yaml file and applies env overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Secrets always come from the environment when set
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "local"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.JWT.ExpiresIn == 0 {
		cfg.JWT.ExpiresIn = time.Hour
	}
	if cfg.JWT.RefreshIn == 0 {
		cfg.JWT.RefreshIn = 7 * 24 * time.Hour
	}
	if cfg.Scheduler.TickInterval == 0 {
		cfg.Scheduler.TickInterval = time.Hour
	}
	if cfg.Scheduler.DedupWindow == 0 {
		cfg.Scheduler.DedupWindow = 12 * time.Hour
	}
	if cfg.Scheduler.ErrorBackoff == 0 {
		cfg.Scheduler.ErrorBackoff = 5 * time.Minute
	}
}

// DSN builds the MySQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

// IsDevelopment reports whether the server runs in a development env
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "local" || c.Server.Env == "development" || c.Server.Env == "dev"
}
