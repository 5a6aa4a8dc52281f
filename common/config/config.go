package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backends
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Event bus backends
const (
	EventsMemory = "memory"
	EventsRedis  = "redis"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Lock      LockConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// StorageConfig selects where ledger partitions live
type StorageConfig struct {
	Backend string // "file" or "postgres"
	DataDir string // root of SaveFiles/ for the file backend
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// CacheConfig holds partition cache settings
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LockConfig controls per-partition save serialization
type LockConfig struct {
	Timeout time.Duration // 0 = wait until the request context ends
	TTL     time.Duration // Redis lock lease
}

// EventsConfig selects the ledger event bus
type EventsConfig struct {
	Backend string // "memory" or "redis"
}

// RateLimitConfig caps ledger writes per actor (requires Redis)
type RateLimitConfig struct {
	Enabled bool
	Writes  int64 // per actor per Window
	Window  time.Duration
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", StorageFile),
			DataDir: getEnv("DATA_DIR", "."),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "crewledger"),
			User:        getEnv("POSTGRES_USER", "crewledger"),
			Password:    getEnv("POSTGRES_PASSWORD", "crewledger"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 10),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", true),
			DefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Lock: LockConfig{
			Timeout: getEnvDuration("LOCK_TIMEOUT", 5*time.Second),
			TTL:     getEnvDuration("LOCK_TTL", 30*time.Second),
		},
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", EventsMemory),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", false),
			Writes:  int64(getEnvInt("RATE_LIMIT_WRITES", 60)),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", false),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("data dir is required for the file storage backend")
		}
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			return fmt.Errorf("max_conns must be >= min_conns")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}

	switch c.Events.Backend {
	case EventsMemory:
	case EventsRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("redis events backend requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown events backend: %s", c.Events.Backend)
	}

	if c.Lock.Timeout < 0 {
		return fmt.Errorf("lock timeout must not be negative")
	}
	if c.Redis.Enabled && c.Lock.TTL <= 0 {
		return fmt.Errorf("lock ttl must be positive when redis locking is enabled")
	}

	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			return fmt.Errorf("rate limiting requires REDIS_ENABLED=true")
		}
		if c.RateLimit.Writes < 1 || c.RateLimit.Window < time.Second {
			return fmt.Errorf("rate limit needs at least 1 write per window of 1s or more")
		}
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
