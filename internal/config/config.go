package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"stressbox/internal/store"
	"stressbox/pkg/database"
)

const (
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultEnvironment     = "production"
	defaultTrackingTimeout = 2 * time.Second
	defaultRankingLimit    = 10
)

// Config holds all configuration values for the application
type Config struct {
	Port            string
	LogLevel        string
	Environment     string
	AllowedOrigins  []string
	StoreBackend    store.Backend
	RedisURL        string
	DatabaseURL     string
	DatabasePool    database.PoolConfig
	AutoMigrate     bool
	KVNamespace     string
	AtomicCounters  bool
	TrackingTimeout time.Duration
	RankingLimit    int
	MetricsEnabled  bool
}

// fileConfig is the optional TOML file layout. Unset keys keep their defaults.
type fileConfig struct {
	Server struct {
		Port           string   `toml:"port"`
		LogLevel       string   `toml:"log_level"`
		Environment    string   `toml:"environment"`
		AllowedOrigins []string `toml:"allowed_origins"`
		MetricsEnabled *bool    `toml:"metrics_enabled"`
	} `toml:"server"`
	Store struct {
		Backend        string `toml:"backend"`
		RedisURL       string `toml:"redis_url"`
		DatabaseURL    string `toml:"database_url"`
		Namespace      string `toml:"namespace"`
		AtomicCounters *bool  `toml:"atomic_counters"`
		MaxConns       int32  `toml:"max_conns"`
		MinConns       int32  `toml:"min_conns"`
		ConnectTimeout string `toml:"connect_timeout"`
		AutoMigrate    *bool  `toml:"auto_migrate"`
	} `toml:"store"`
	Tracking struct {
		Timeout      string `toml:"timeout"`
		RankingLimit *int   `toml:"ranking_limit"`
	} `toml:"tracking"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:            defaultPort,
		LogLevel:        defaultLogLevel,
		Environment:     defaultEnvironment,
		AllowedOrigins:  []string{},
		DatabasePool:    database.DefaultPoolConfig(),
		AutoMigrate:     true,
		AtomicCounters:  true,
		TrackingTimeout: defaultTrackingTimeout,
		RankingLimit:    defaultRankingLimit,
		MetricsEnabled:  true,
	}
}

// Load loads configuration from .env, an optional TOML file named by
// CONFIG_FILE, then environment variables. Environment variables win.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.resolveBackend(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Server.Port != "" {
		c.Port = fc.Server.Port
	}
	if fc.Server.LogLevel != "" {
		c.LogLevel = fc.Server.LogLevel
	}
	if fc.Server.Environment != "" {
		c.Environment = fc.Server.Environment
	}
	if len(fc.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.Server.AllowedOrigins
	}
	if fc.Server.MetricsEnabled != nil {
		c.MetricsEnabled = *fc.Server.MetricsEnabled
	}
	if fc.Store.Backend != "" {
		c.StoreBackend = store.Backend(strings.ToLower(fc.Store.Backend))
	}
	if fc.Store.RedisURL != "" {
		c.RedisURL = fc.Store.RedisURL
	}
	if fc.Store.DatabaseURL != "" {
		c.DatabaseURL = fc.Store.DatabaseURL
	}
	if fc.Store.Namespace != "" {
		c.KVNamespace = fc.Store.Namespace
	}
	if fc.Store.AtomicCounters != nil {
		c.AtomicCounters = *fc.Store.AtomicCounters
	}
	if fc.Store.MaxConns > 0 {
		c.DatabasePool.MaxConns = fc.Store.MaxConns
	}
	if fc.Store.MinConns > 0 {
		c.DatabasePool.MinConns = fc.Store.MinConns
	}
	if fc.Store.ConnectTimeout != "" {
		d, err := time.ParseDuration(fc.Store.ConnectTimeout)
		if err != nil {
			return fmt.Errorf("parse store.connect_timeout: %w", err)
		}
		c.DatabasePool.ConnectTimeout = d
	}
	if fc.Store.AutoMigrate != nil {
		c.AutoMigrate = *fc.Store.AutoMigrate
	}
	if fc.Tracking.Timeout != "" {
		d, err := time.ParseDuration(fc.Tracking.Timeout)
		if err != nil {
			return fmt.Errorf("parse tracking.timeout: %w", err)
		}
		c.TrackingTimeout = d
	}
	if limit := fc.Tracking.RankingLimit; limit != nil {
		if *limit < 0 {
			return fmt.Errorf("tracking.ranking_limit must not be negative")
		}
		c.RankingLimit = *limit
	}

	return nil
}

func applyEnvOverrides(c *Config) {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = parseOrigins(origins)
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		c.StoreBackend = store.Backend(strings.ToLower(strings.TrimSpace(backend)))
	}
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DatabasePool.MaxConns = int32(getIntEnv("DB_MAX_CONNS", int(c.DatabasePool.MaxConns)))
	c.DatabasePool.MinConns = int32(getIntEnv("DB_MIN_CONNS", int(c.DatabasePool.MinConns)))
	c.DatabasePool.ConnectTimeout = getDurationEnv("DB_CONNECT_TIMEOUT", c.DatabasePool.ConnectTimeout)
	c.AutoMigrate = getBoolEnv("DB_AUTO_MIGRATE", c.AutoMigrate)
	c.KVNamespace = getEnv("KV_NAMESPACE", c.KVNamespace)
	c.AtomicCounters = getBoolEnv("ATOMIC_COUNTERS", c.AtomicCounters)
	c.TrackingTimeout = getDurationEnv("TRACKING_TIMEOUT", c.TrackingTimeout)
	c.RankingLimit = getIntEnv("RANKING_LIMIT", c.RankingLimit)
	c.MetricsEnabled = getBoolEnv("METRICS_ENABLED", c.MetricsEnabled)
}

// resolveBackend picks a backend from the configured URLs when none is named
func (c *Config) resolveBackend() error {
	switch c.StoreBackend {
	case "":
		switch {
		case c.RedisURL != "":
			c.StoreBackend = store.BackendRedis
		case c.DatabaseURL != "":
			c.StoreBackend = store.BackendPostgres
		default:
			c.StoreBackend = store.BackendNone
		}
	case store.BackendRedis, store.BackendPostgres, store.BackendMemory, store.BackendNone:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	return nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getIntEnv reads a non-negative integer
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
