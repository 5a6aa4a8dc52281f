package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lyzr/crewledger/common/cache"
	"github.com/lyzr/crewledger/common/config"
	"github.com/lyzr/crewledger/common/db"
	"github.com/lyzr/crewledger/common/events"
	"github.com/lyzr/crewledger/common/lock"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/partition"
	"github.com/lyzr/crewledger/common/ratelimit"
	"github.com/lyzr/crewledger/common/redis"
	"github.com/lyzr/crewledger/common/telemetry"
)

const redisPrefix = "crewledger:"

// Setup initializes all service components
// This is the main entry point for all services
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg := components.Config

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", cfg.Service.Environment,
		"storage", cfg.Storage.Backend,
	)

	fail := func(err error) (*Components, error) {
		_ = components.Shutdown(ctx)
		return nil, err
	}

	// 3. Initialize Redis (if enabled)
	if !options.skipRedis && cfg.Redis.Enabled {
		components.Logger.Info("connecting to redis", "addr", cfg.RedisAddr())
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		components.Redis = redis.NewClient(rdb, components.Logger)
		components.addCleanup(func() error {
			components.Logger.Info("closing redis connection")
			return components.Redis.Close()
		})
		if err := components.Redis.Ping(ctx); err != nil {
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
	}

	// 4. Initialize partition storage
	var store partition.Store
	switch {
	case options.customStore != nil:
		store = options.customStore
	case cfg.Storage.Backend == config.StoragePostgres:
		components.Logger.Info("connecting to database")
		components.DB, err = db.New(ctx, cfg, components.Logger)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to database: %w", err))
		}
		components.addCleanup(func() error {
			components.Logger.Info("closing database connection")
			components.DB.Close()
			return nil
		})
		if err := components.DB.Migrate(ctx, partition.Schema); err != nil {
			return fail(fmt.Errorf("failed to apply schema: %w", err))
		}
		if options.dbInitHook != nil {
			components.Logger.Info("running database init hook")
			if err := options.dbInitHook(components.DB); err != nil {
				return fail(fmt.Errorf("database init hook failed: %w", err))
			}
		}
		store = partition.NewPostgresStore(components.DB)
	default:
		components.Logger.Info("using file storage", "data_dir", cfg.Storage.DataDir)
		store = partition.NewFileStore(cfg.Storage.DataDir)
	}

	// 5. Initialize cache (if not skipped)
	if !options.skipCache && cfg.Cache.Enabled {
		if components.Redis != nil {
			components.Logger.Info("initializing cache", "type", "redis", "ttl", cfg.Cache.DefaultTTL)
			components.Cache = cache.NewRedisCache(components.Redis, redisPrefix+"partition:")
		} else {
			components.Logger.Info("initializing cache", "type", "memory", "ttl", cfg.Cache.DefaultTTL)
			components.Cache = cache.NewMemoryCache(components.Logger)
		}
		components.addCleanup(func() error {
			components.Logger.Info("closing cache")
			return components.Cache.Close()
		})
		components.CachedStore = partition.NewCachedStore(store, components.Cache, cfg.Cache.DefaultTTL, components.Logger)
		store = components.CachedStore
	}
	components.Store = store

	// 6. Partition locking: in-process always, plus a Redis lease across replicas
	local := lock.NewKeyedMutex(cfg.Lock.Timeout)
	if components.Redis != nil {
		components.Locker = lock.Chain(local, lock.NewRedisLocker(components.Redis, cfg.Lock.TTL, cfg.Lock.Timeout, components.Logger))
	} else {
		components.Locker = local
	}

	// 7. Initialize event bus (if not skipped)
	if !options.skipBus {
		components.Logger.Info("initializing event bus", "backend", cfg.Events.Backend)

		switch cfg.Events.Backend {
		case config.EventsMemory:
			components.Bus = events.NewMemoryBus(components.Logger)
		case config.EventsRedis:
			if components.Redis == nil {
				return fail(fmt.Errorf("redis events backend requires a redis connection"))
			}
			components.Bus = events.NewRedisBus(components.Redis, redisPrefix, components.Logger)
		default:
			return fail(fmt.Errorf("unknown events backend: %s", cfg.Events.Backend))
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing event bus")
			return components.Bus.Close()
		})
	}

	// 8. Write rate limiting (Redis only)
	if cfg.RateLimit.Enabled && components.Redis != nil {
		components.Logger.Info("initializing rate limiter", "writes", cfg.RateLimit.Writes, "window", cfg.RateLimit.Window)
		components.RateLimiter = ratelimit.NewLimiter(components.Redis, redisPrefix, components.Logger)
	}

	// 9. Initialize telemetry (if not skipped)
	if !options.skipTelemetry && cfg.Telemetry.EnablePprof {
		components.Logger.Info("initializing telemetry")
		components.Telemetry = telemetry.New(cfg.Telemetry.PprofPort, components.Logger)

		if err := components.Telemetry.Start(ctx); err != nil {
			components.Logger.Warn("failed to start telemetry", "error", err)
		} else {
			components.addCleanup(func() error {
				return components.Telemetry.Stop(context.Background())
			})
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"db", components.DB != nil,
		"redis", components.Redis != nil,
		"bus", components.Bus != nil,
		"cache", components.Cache != nil,
		"rate_limit", components.RateLimiter != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
// Useful for services that can't recover from initialization failure
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
