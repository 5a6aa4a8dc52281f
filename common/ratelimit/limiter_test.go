package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/redis"
)

func newTestLimiter(t *testing.T) *Limiter {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	client := redis.NewClient(rdb, logger.Discard())
	require.NoError(t, client.Ping(context.Background()))
	return NewLimiter(client, "crewledger_test:", logger.Discard())
}

func TestLimiter_ActorWindow(t *testing.T) {
	l := newTestLimiter(t)
	ctx := context.Background()
	actor := "alice-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = l.Reset(ctx, actor) })

	for i := 1; i <= 3; i++ {
		res, err := l.CheckActor(ctx, actor, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.EqualValues(t, i, res.CurrentCount)
	}

	res, err := l.CheckActor(ctx, actor, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.EqualValues(t, 3, res.Limit)
	assert.Greater(t, res.RetryAfterSeconds, int64(0))

	require.NoError(t, l.Reset(ctx, actor))
	res, err = l.CheckActor(ctx, actor, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
