package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Bridge     BridgeConfig     `yaml:"bridge"`
	Poll       PollConfig       `yaml:"poll"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// BridgeConfig describes how to reach the receiver command bridge.
type BridgeConfig struct {
	BaseURL        string            `yaml:"base_url"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Timeout        time.Duration     `yaml:"-"` // Ignored by YAML parser
}

// PollConfig holds the adaptive polling configuration. The transitional
// interval is used while the receiver is warming up or cooling down.
type PollConfig struct {
	Enabled                  bool          `yaml:"enabled"`
	StableIntervalSeconds    int           `yaml:"stable_interval_seconds"`
	TransitionalIntervalSecs int           `yaml:"transitional_interval_seconds"`
	StableInterval           time.Duration `yaml:"-"`
	TransitionalInterval     time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Bridge.TimeoutSeconds <= 0 {
		// Blocking commands (power_status_wait, on, off) can take the
		// receiver tens of seconds to answer.
		cfg.Bridge.TimeoutSeconds = 60
	}
	cfg.Bridge.Timeout = time.Duration(cfg.Bridge.TimeoutSeconds) * time.Second

	if cfg.Poll.StableIntervalSeconds <= 0 {
		cfg.Poll.StableIntervalSeconds = 30
	}
	if cfg.Poll.TransitionalIntervalSecs <= 0 {
		cfg.Poll.TransitionalIntervalSecs = 1
	}
	cfg.Poll.StableInterval = time.Duration(cfg.Poll.StableIntervalSeconds) * time.Second
	cfg.Poll.TransitionalInterval = time.Duration(cfg.Poll.TransitionalIntervalSecs) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "receiverd.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
