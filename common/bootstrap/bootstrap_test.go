package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/config"
	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/partition"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "test", Port: 8080, LogLevel: "error"},
		Storage: config.StorageConfig{Backend: config.StorageFile, DataDir: t.TempDir()},
		Cache:   config.CacheConfig{Enabled: true, DefaultTTL: time.Minute},
		Lock:    config.LockConfig{Timeout: time.Second},
		Events:  config.EventsConfig{Backend: config.EventsMemory},
	}
}

func TestSetup_FileBackendWithCache(t *testing.T) {
	ctx := context.Background()
	c, err := Setup(ctx, "test", WithCustomConfig(testConfig(t)), WithCustomLogger(logger.Discard()))
	require.NoError(t, err)
	defer c.Shutdown(ctx)

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)
	require.NotNil(t, c.CachedStore)
	assert.Same(t, c.CachedStore, c.Store)
	assert.NotNil(t, c.Locker)
	assert.NotNil(t, c.Bus)
	assert.NoError(t, c.Health(ctx))

	require.NoError(t, c.Store.Save(ctx, "OT_A_2024", []byte("{}")))
	obj, err := c.Store.Load(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(obj.Data))
}

func TestSetup_Options(t *testing.T) {
	ctx := context.Background()
	custom := partition.NewFileStore(t.TempDir())
	c, err := Setup(ctx, "test",
		WithCustomConfig(testConfig(t)),
		WithCustomLogger(logger.Discard()),
		WithStore(custom),
		WithoutCache(),
		WithoutBus(),
		WithoutTelemetry(),
	)
	require.NoError(t, err)

	assert.Same(t, custom, c.Store)
	assert.Nil(t, c.CachedStore)
	assert.Nil(t, c.Bus)
	require.NoError(t, c.Shutdown(ctx))
	require.NoError(t, c.Shutdown(ctx))
}

func TestSetup_RedisBusWithoutRedisFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Events.Backend = config.EventsRedis

	_, err := Setup(context.Background(), "test", WithCustomConfig(cfg), WithCustomLogger(logger.Discard()))
	assert.Error(t, err)
}
