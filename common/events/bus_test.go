package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/logger"
)

func TestMemoryBus_FanOut(t *testing.T) {
	bus := NewMemoryBus(logger.Discard())
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	got := map[string][]string{}
	for _, name := range []string{"cache", "audit"} {
		name := name
		require.NoError(t, bus.Subscribe(ctx, TopicLedgerSaved, func(ctx context.Context, key string, value []byte) error {
			mu.Lock()
			defer mu.Unlock()
			got[name] = append(got[name], key+"="+string(value))
			return nil
		}))
	}

	require.NoError(t, bus.Publish(ctx, TopicLedgerSaved, "OT_A_2024", []byte("1")))
	require.NoError(t, bus.Publish(ctx, "other.topic", "OT_A_2024", []byte("x")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got["cache"]) == 1 && len(got["audit"]) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"OT_A_2024=1"}, got["cache"])
	mu.Unlock()
}

func TestMemoryBus_CloseStopsSubscribers(t *testing.T) {
	bus := NewMemoryBus(logger.Discard())
	done := make(chan struct{})
	require.NoError(t, bus.Subscribe(context.Background(), "t", func(context.Context, string, []byte) error {
		return nil
	}))
	go func() {
		assert.NoError(t, bus.Close())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close blocked")
	}
	assert.NoError(t, bus.Publish(context.Background(), "t", "k", nil))
	assert.NoError(t, bus.Close())
}

func TestMemoryBus_CancelledSubscriptionIsRemoved(t *testing.T) {
	bus := NewMemoryBus(logger.Discard())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Subscribe(ctx, "t", func(context.Context, string, []byte) error { return nil }))
	cancel()

	assert.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.topics["t"]) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSavedEvent_EncodeDecode(t *testing.T) {
	e := NewSavedEvent("OT_A_2024", 3, "jdoe", "save_month")
	data, err := e.Encode()
	require.NoError(t, err)

	got, err := DecodeSavedEvent(data)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "OT_A_2024", got.Partition)
	assert.True(t, e.At.Equal(got.At))

	_, err = DecodeSavedEvent([]byte("{"))
	assert.Error(t, err)
}
