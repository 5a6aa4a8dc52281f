package partition

import (
	"context"
	"time"

	"github.com/lyzr/crewledger/common/cache"
	"github.com/lyzr/crewledger/common/logger"
)

// CachedStore serves repeated loads from a cache while the underlying
// object's modification time is unchanged
type CachedStore struct {
	store Store
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedStore wraps store with c; ttl <= 0 keeps entries until invalidated
func NewCachedStore(store Store, c cache.Cache, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{store: store, cache: c, ttl: ttl, log: log}
}

// Load returns the cached document when it is still current
func (s *CachedStore) Load(ctx context.Context, name string) (Object, error) {
	modTime, err := s.store.Stat(ctx, name)
	if err != nil {
		return Object{}, err
	}

	entry, ok, err := s.cache.Get(ctx, name)
	if err != nil {
		s.log.Warn("partition cache read failed", "partition", name, "error", err)
	}
	if ok && entry.ModTime.Equal(modTime) {
		s.log.Debug("partition cache hit", "partition", name)
		return Object{Data: entry.Value, ModTime: entry.ModTime}, nil
	}

	obj, err := s.store.Load(ctx, name)
	if err != nil {
		return Object{}, err
	}
	if err := s.cache.Set(ctx, name, cache.Entry{Value: obj.Data, ModTime: obj.ModTime}, s.ttl); err != nil {
		s.log.Warn("partition cache write failed", "partition", name, "error", err)
	}
	return obj, nil
}

// Stat passes through to the underlying store
func (s *CachedStore) Stat(ctx context.Context, name string) (time.Time, error) {
	return s.store.Stat(ctx, name)
}

// Save writes through and drops the cached copy
func (s *CachedStore) Save(ctx context.Context, name string, data []byte) error {
	if err := s.store.Save(ctx, name, data); err != nil {
		return err
	}
	s.Invalidate(ctx, name)
	return nil
}

// Invalidate drops a cached partition, e.g. when another replica saved it
func (s *CachedStore) Invalidate(ctx context.Context, name string) {
	if err := s.cache.Delete(ctx, name); err != nil {
		s.log.Warn("partition cache invalidate failed", "partition", name, "error", err)
	}
}
