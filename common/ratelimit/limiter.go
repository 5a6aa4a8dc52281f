package ratelimit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/redis"
)

//go:embed rate_limit.lua
var rateLimitScript string

// Result contains the result of a rate limit check
type Result struct {
	Allowed           bool  // Whether the request is allowed
	CurrentCount      int64 // Current count in the window
	Limit             int64 // The limit that was checked
	RetryAfterSeconds int64 // Seconds until the window resets (0 if allowed)
}

// Limiter counts ledger writes in fixed Redis windows shared by all replicas
type Limiter struct {
	client *redis.Client
	script *goredis.Script
	prefix string
	log    *logger.Logger
}

// NewLimiter creates a new limiter with the embedded Lua script
func NewLimiter(client *redis.Client, prefix string, log *logger.Logger) *Limiter {
	return &Limiter{
		client: client,
		script: goredis.NewScript(rateLimitScript),
		prefix: prefix + "rate_limit:",
		log:    log,
	}
}

// CheckGlobal checks the service-wide write limit
func (l *Limiter) CheckGlobal(ctx context.Context, limit int64, window time.Duration) (*Result, error) {
	return l.check(ctx, l.prefix+"global", limit, window)
}

// CheckActor checks the write limit for one actor
func (l *Limiter) CheckActor(ctx context.Context, actor string, limit int64, window time.Duration) (*Result, error) {
	return l.check(ctx, l.prefix+"actor:"+actor, limit, window)
}

// check executes the rate limit Lua script
func (l *Limiter) check(ctx context.Context, key string, limit int64, window time.Duration) (*Result, error) {
	windowSec := int64(window / time.Second)
	if windowSec < 1 {
		windowSec = 1
	}

	raw, err := l.client.RunScript(ctx, l.script, []string{key}, limit, windowSec)
	if err != nil {
		l.log.Error("rate limit check failed", "key", key, "error", err)
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	// {allowed, current_count, limit, retry_after}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("unexpected script result format")
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected script result element %T", v)
		}
		ints[i] = n
	}

	result := &Result{
		Allowed:           ints[0] == 1,
		CurrentCount:      ints[1],
		Limit:             ints[2],
		RetryAfterSeconds: ints[3],
	}

	if !result.Allowed {
		l.log.Warn("rate limit exceeded",
			"key", key,
			"current", result.CurrentCount,
			"limit", limit,
			"retry_after", result.RetryAfterSeconds)
	} else {
		l.log.Debug("rate limit check passed",
			"key", key,
			"current", result.CurrentCount,
			"limit", limit)
	}

	return result, nil
}

// Reset clears an actor's counter
func (l *Limiter) Reset(ctx context.Context, actor string) error {
	return l.client.Delete(ctx, l.prefix+"actor:"+actor)
}
