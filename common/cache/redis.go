package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lyzr/crewledger/common/redis"
)

const (
	fieldValue   = "value"
	fieldModTime = "mod_time"
)

// RedisCache shares partition documents between ledgerd replicas. Each entry
// is a hash holding the document and its modification time.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a cache whose keys are namespaced under prefix
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	fields, err := c.client.GetAllHash(ctx, c.key(key))
	if err != nil {
		return Entry{}, false, err
	}
	value, ok := fields[fieldValue]
	if !ok {
		return Entry{}, false, nil
	}
	modTime, err := time.Parse(time.RFC3339Nano, fields[fieldModTime])
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache entry %s: bad mod_time: %w", key, err)
	}
	return Entry{Value: []byte(value), ModTime: modTime}, true, nil
}

// Set stores a value in cache with TTL
func (c *RedisCache) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	return c.client.SetHashWithExpiry(ctx, c.key(key), map[string]interface{}{
		fieldValue:   entry.Value,
		fieldModTime: entry.ModTime.UTC().Format(time.RFC3339Nano),
	}, ttl)
}

// Delete removes a value from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Delete(ctx, c.key(key))
}

// Close is a no-op; the Redis client is owned by bootstrap
func (c *RedisCache) Close() error {
	return nil
}
