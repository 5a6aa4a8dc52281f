package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/logger"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(logger.Discard())
	defer c.Close()
	ctx := context.Background()

	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, c.Set(ctx, "OT_A_2024", Entry{Value: []byte("doc"), ModTime: mod}, time.Minute))

	got, ok, err := c.Get(ctx, "OT_A_2024")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("doc"), got.Value)
	assert.True(t, mod.Equal(got.ModTime))

	require.NoError(t, c.Delete(ctx, "OT_A_2024"))
	_, ok, err = c.Get(ctx, "OT_A_2024")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(logger.Discard())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", Entry{Value: []byte("x")}, time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", Entry{Value: []byte("y")}, 0))
	time.Sleep(5 * time.Millisecond)

	_, ok, _ := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryCache_CleanupSweepsExpired(t *testing.T) {
	c := newMemoryCache(logger.Discard(), 5*time.Millisecond)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", Entry{Value: []byte("v")}, time.Millisecond))
	assert.Eventually(t, func() bool {
		return c.Stats()["entries"] == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	c := NewMemoryCache(logger.Discard())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	require.NoError(t, c.Set(context.Background(), "k", Entry{}, time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
