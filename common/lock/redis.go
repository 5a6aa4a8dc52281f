package lock

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/redis"
)

//go:embed release.lua
var releaseScript string

const defaultRetryInterval = 25 * time.Millisecond

// RedisLocker is a lease-based Locker shared by every ledgerd replica.
// A lease expires after ttl so a crashed holder cannot wedge a partition.
type RedisLocker struct {
	client  *redis.Client
	script  *goredis.Script
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	retry   time.Duration
	log     *logger.Logger
}

// NewRedisLocker creates a Redis lease locker; timeout <= 0 waits until ctx ends
func NewRedisLocker(client *redis.Client, ttl, timeout time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{
		client:  client,
		script:  goredis.NewScript(releaseScript),
		prefix:  "crewledger:lock:",
		ttl:     ttl,
		timeout: timeout,
		retry:   defaultRetryInterval,
		log:     log,
	}
}

// Acquire polls SET NX until the lease is granted
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	leaseKey := l.prefix + key
	token := uuid.NewString()
	start := time.Now()

	var deadline <-chan time.Time
	if l.timeout > 0 {
		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, leaseKey, token, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, timeoutError(key, time.Since(start))
		case <-ticker.C:
		}
	}

	l.log.Debug("partition lease acquired", "partition", key, "waited", time.Since(start))

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := l.client.RunScript(ctx, l.script, []string{leaseKey}, token); err != nil {
				l.log.Warn("partition lease release failed", "partition", key, "error", err)
			}
		})
	}, nil
}
