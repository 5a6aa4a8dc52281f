package bootstrap

import (
	"context"
	"fmt"

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

// Components holds all initialized service dependencies
type Components struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *db.DB
	Redis     *redis.Client
	Bus       events.Bus
	Cache     cache.Cache
	Store     partition.Store
	Locker    lock.Locker
	Telemetry *telemetry.Telemetry

	// RateLimiter is set when RATE_LIMIT_ENABLED and Redis is connected
	RateLimiter *ratelimit.Limiter

	// CachedStore is Store when a cache is configured, nil otherwise
	CachedStore *partition.CachedStore

	// Internal
	cleanupFuncs []func() error
}

// Shutdown performs graceful shutdown of all components
// Should be called with defer after Setup()
func (c *Components) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down components")

	var errors []error

	// Run cleanup functions in reverse order (LIFO)
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			errors = append(errors, err)
			c.Logger.Error("cleanup error", "error", err)
		}
	}
	c.cleanupFuncs = nil

	if len(errors) > 0 {
		return fmt.Errorf("shutdown errors: %v", errors)
	}

	c.Logger.Info("shutdown complete")
	return nil
}

// Health checks health of all components
func (c *Components) Health(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Health(ctx); err != nil {
			return fmt.Errorf("database unhealthy: %w", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}

	// Memory bus and memory cache are always healthy

	return nil
}

// addCleanup registers a cleanup function
func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
