package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/property-intel/internal/filter"
)

// Config holds all application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
	Records RecordsConfig `yaml:"records" mapstructure:"records"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// StoreConfig selects where saved searches and the activity log persist.
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS        float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst      int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	RateLimitClients    int      `yaml:"rate_limit_clients" mapstructure:"rate_limit_clients"`
	TrustProxy          bool     `yaml:"trust_proxy" mapstructure:"trust_proxy"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
	MapCacheEntries     int      `yaml:"map_cache_entries" mapstructure:"map_cache_entries"`
	MapCacheTTLSecs     int      `yaml:"map_cache_ttl_secs" mapstructure:"map_cache_ttl_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SearchConfig holds result defaults.
type SearchConfig struct {
	DefaultSort string `yaml:"default_sort" mapstructure:"default_sort"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
	MaxPageSize int    `yaml:"max_page_size" mapstructure:"max_page_size"`
}

// SessionConfig names the acting user for CLI commands.
type SessionConfig struct {
	UserID string `yaml:"user_id" mapstructure:"user_id"`
}

// RecordsConfig configures the property record source.
type RecordsConfig struct {
	Paths    []string `yaml:"paths" mapstructure:"paths"`
	Generate int      `yaml:"generate" mapstructure:"generate"`
	Seed     uint64   `yaml:"seed" mapstructure:"seed"`
}

// RetryConfig tunes reconnect attempts against the store.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so AutomaticEnv can see it on Unmarshal.
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.rate_limit_clients", 10000)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("server.map_cache_entries", 256)
	v.SetDefault("server.map_cache_ttl_secs", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("search.default_sort", string(filter.SortValueDesc))
	v.SetDefault("search.page_size", 50)
	v.SetDefault("search.max_page_size", 500)
	v.SetDefault("session.user_id", "user-001")
	v.SetDefault("records.paths", []string{})
	v.SetDefault("records.generate", 0)
	v.SetDefault("records.seed", 1)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 250)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			problems = append(problems, fmt.Sprintf("store.dsn is required for driver %s", c.Store.Driver))
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of memory, sqlite, postgres", c.Store.Driver))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RateLimitRPS < 0 {
		problems = append(problems, "server.rate_limit_rps must not be negative")
	}
	if c.Server.RateLimitClients < 0 {
		problems = append(problems, "server.rate_limit_clients must not be negative")
	}
	if _, err := filter.ParseSortKey(c.Search.DefaultSort); err != nil {
		problems = append(problems, fmt.Sprintf("search.default_sort %q is unknown", c.Search.DefaultSort))
	}
	if c.Search.PageSize < 1 {
		problems = append(problems, "search.page_size must be positive")
	}
	if c.Search.MaxPageSize < c.Search.PageSize {
		problems = append(problems, "search.max_page_size must be at least search.page_size")
	}
	if c.Records.Generate < 0 {
		problems = append(problems, "records.generate must not be negative")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
