package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/redis"
)

// RedisBus fans messages out to every ledgerd replica over Redis pub/sub
type RedisBus struct {
	client *redis.Client
	prefix string
	log    *logger.Logger

	mu   sync.Mutex
	subs []*goredis.PubSub
}

type envelope struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// NewRedisBus creates a bus whose channels are namespaced under prefix
func NewRedisBus(client *redis.Client, prefix string, log *logger.Logger) *RedisBus {
	return &RedisBus{client: client, prefix: prefix, log: log}
}

// Publish publishes a message to a topic
func (b *RedisBus) Publish(ctx context.Context, topic string, key string, message []byte) error {
	data, err := json.Marshal(envelope{Key: key, Value: message})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return b.client.PublishEvent(ctx, b.prefix+topic, data)
}

// Subscribe subscribes to a topic and processes messages until ctx ends or
// the bus is closed
func (b *RedisBus) Subscribe(ctx context.Context, topic string, handler MessageHandler) error {
	sub, err := b.client.Subscribe(ctx, b.prefix+topic)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.log.Info("subscribing to topic", "topic", topic, "backend", "redis")

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				b.log.Info("subscription cancelled", "topic", topic)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.log.Warn("dropping malformed message", "topic", topic, "error", err)
					continue
				}
				if err := handler(ctx, env.Key, env.Value); err != nil {
					b.log.Error("message handler error", "topic", topic, "key", env.Key, "error", err)
				}
			}
		}
	}()

	return nil
}

// Close ends every subscription; the Redis client is owned by bootstrap
func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for _, sub := range b.subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.subs = nil
	return firstErr
}
