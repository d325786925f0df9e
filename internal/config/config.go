// Package config loads application configuration from an optional tonify.yaml
// file, TONIFY_* environment overrides, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Oracle OracleConfig `mapstructure:"oracle"`
	Store  StoreConfig  `mapstructure:"store"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	EnableCORS bool   `mapstructure:"enable_cors"`
	Debug      bool   `mapstructure:"debug"`
}

// OracleConfig configures the two LLM oracle adapters.
type OracleConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	ScoringModel    string `mapstructure:"scoring_model"`
	GenerationModel string `mapstructure:"generation_model"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the oracle HTTP timeout as a duration.
func (c OracleConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StoreConfig selects and configures the profile store backend.
type StoreConfig struct {
	Backend       string `mapstructure:"backend"` // memory | sqlite | redis
	SQLitePath    string `mapstructure:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	ListCacheSize int    `mapstructure:"list_cache_size"`
}

// Load reads configuration. configFile may be empty, in which case a
// tonify.yaml in the working directory is used when present.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.debug", false)

	v.SetDefault("oracle.base_url", "https://api.openai.com/v1")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.scoring_model", "gpt-4o-mini")
	v.SetDefault("oracle.generation_model", "gpt-4o-mini")
	v.SetDefault("oracle.timeout_seconds", 60)

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite_path", "tonify.db")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.list_cache_size", 128)

	v.SetEnvPrefix("TONIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("tonify")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations that cannot produce a working service.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("oracle base_url is required")
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("oracle timeout_seconds must be positive")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (expected memory, sqlite, or redis)", c.Store.Backend)
	}

	if c.Store.ListCacheSize <= 0 {
		return fmt.Errorf("store list_cache_size must be positive")
	}
	return nil
}
