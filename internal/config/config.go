package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

const (
	BackendMemgraph = "memgraph"
	BackendSQLite   = "sqlite"
)

// Durations are whole seconds so the same value works in TOML and in the environment.

type ServerConfig struct {
	Port            int    `toml:"port" env:"PORT"`
	Mode            string `toml:"mode" env:"GIN_MODE"`
	ShutdownTimeout int    `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type MemgraphConfig struct {
	URI                string `toml:"uri" env:"MEMGRAPH_URI"`
	User               string `toml:"user" env:"MEMGRAPH_USER"`
	Password           string `toml:"password" env:"MEMGRAPH_PASSWORD"`
	MaxPoolSize        int    `toml:"max_pool_size" env:"MEMGRAPH_MAX_POOL_SIZE"`
	AcquisitionTimeout int    `toml:"acquisition_timeout" env:"MEMGRAPH_ACQUISITION_TIMEOUT"`
	ConnectTimeout     int    `toml:"connect_timeout" env:"MEMGRAPH_CONNECT_TIMEOUT"`
	MaxLifetime        int    `toml:"max_lifetime" env:"MEMGRAPH_MAX_LIFETIME"`
	QueryTimeout       int    `toml:"query_timeout" env:"MEMGRAPH_QUERY_TIMEOUT"`
	// BuildIndices creates the lookup indices on startup.
	BuildIndices       bool   `toml:"build_indices" env:"MEMGRAPH_BUILD_INDICES"`
}

type SQLiteConfig struct {
	Path string `toml:"path" env:"SQLITE_PATH"`
}

type GraphConfig struct {
	Backend      string `toml:"backend" env:"GRAPH_BACKEND"`
	PresidencyID string `toml:"presidency_id" env:"PRESIDENCY_ID"`
}

type ConcurrencyConfig struct {
	FanOut int `toml:"fan_out" env:"FAN_OUT_LIMIT"`
}

type ThrottleConfig struct {
	MaxConcurrent int `toml:"max_concurrent" env:"THROTTLE_MAX_CONCURRENT"`
	WaitTimeout   int `toml:"wait_timeout" env:"THROTTLE_WAIT_TIMEOUT"`
}

type RateLimitConfig struct {
	Enabled   bool   `toml:"enabled" env:"RATE_LIMIT_ENABLED"`
	GlobalRPS int    `toml:"global_rps" env:"RATE_LIMIT_GLOBAL_RPS"`
	Storage   string `toml:"storage" env:"RATE_LIMIT_STORAGE"` // memory or redis
	RedisURL  string `toml:"redis_url" env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitConfig) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit global_rps must be non-negative, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit redis_url is required when storage is 'redis'")
	}
	return nil
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	SQLite      SQLiteConfig      `toml:"sqlite"`
	Graph       GraphConfig       `toml:"graph"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Throttle    ThrottleConfig    `toml:"throttle"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
	Log         LogConfig         `toml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ShutdownTimeout: 15,
		},
		Memgraph: MemgraphConfig{
			URI:                "bolt://localhost:7687",
			MaxPoolSize:        50,
			AcquisitionTimeout: 30,
			ConnectTimeout:     30,
			MaxLifetime:        300,
			QueryTimeout:       90,
		},
		SQLite: SQLiteConfig{
			Path: "data/orgchart.db",
		},
		Graph: GraphConfig{
			Backend:      BackendMemgraph,
			PresidencyID: "gov_01",
		},
		Concurrency: ConcurrencyConfig{
			FanOut: 10,
		},
		Throttle: ThrottleConfig{
			MaxConcurrent: 200,
			WaitTimeout:   30,
		},
		RateLimit: RateLimitConfig{
			GlobalRPS: 1000,
			Storage:   "memory",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Graph.Backend {
	case BackendMemgraph:
		if c.Memgraph.URI == "" {
			return fmt.Errorf("memgraph uri is required for the memgraph backend")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("graph backend must be '%s' or '%s', got '%s'", BackendMemgraph, BackendSQLite, c.Graph.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Concurrency.FanOut < 0 {
		return fmt.Errorf("concurrency fan_out must be non-negative, got %d", c.Concurrency.FanOut)
	}
	if c.Throttle.MaxConcurrent <= 0 {
		return fmt.Errorf("throttle max_concurrent must be positive, got %d", c.Throttle.MaxConcurrent)
	}
	if c.Throttle.WaitTimeout <= 0 {
		return fmt.Errorf("throttle wait_timeout must be positive, got %d", c.Throttle.WaitTimeout)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (c ThrottleConfig) Wait() time.Duration { return seconds(c.WaitTimeout) }

func (c ServerConfig) Shutdown() time.Duration { return seconds(c.ShutdownTimeout) }

func (c MemgraphConfig) Query() time.Duration { return seconds(c.QueryTimeout) }

func (c MemgraphConfig) Acquisition() time.Duration { return seconds(c.AcquisitionTimeout) }

func (c MemgraphConfig) Connect() time.Duration { return seconds(c.ConnectTimeout) }

func (c MemgraphConfig) Lifetime() time.Duration { return seconds(c.MaxLifetime) }
