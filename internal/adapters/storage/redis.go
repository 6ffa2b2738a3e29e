package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/okian/encore/pkg/metrics"
)

// notifyChannelPrefix namespaces the pub/sub channels that carry change
// signals alongside the stored values.
const notifyChannelPrefix = "notify:"

// RedisStore implements Store on a Redis backend. Values live under a key
// prefix; change notification rides Redis Pub/Sub, so every process sharing
// the namespace observes every write, its own included.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get returns the value stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		metrics.RecordStorageError("get")
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value under key and publishes a change signal.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		metrics.RecordStorageError("set")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	if err := r.client.Publish(ctx, r.channel(key), "set").Err(); err != nil {
		metrics.RecordStorageError("publish")
		return fmt.Errorf("redis publish %s: %w", key, err)
	}
	return nil
}

// Delete removes key and publishes a change signal.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	removed, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		metrics.RecordStorageError("delete")
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	if removed == 0 {
		return nil
	}
	if err := r.client.Publish(ctx, r.channel(key), "delete").Err(); err != nil {
		metrics.RecordStorageError("publish")
		return fmt.Errorf("redis publish %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix, with the namespace prefix
// stripped.
func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	full, err := r.client.Keys(ctx, r.prefix+prefix+"*").Result()
	if err != nil {
		metrics.RecordStorageError("keys")
		return nil, fmt.Errorf("redis keys %s: %w", prefix, err)
	}
	out := make([]string, 0, len(full))
	for _, k := range full {
		out = append(out, strings.TrimPrefix(k, r.prefix))
	}
	return out, nil
}

// Subscribe listens on the key's companion pub/sub channel. The returned
// cancel closes the subscription and stops the pump goroutine.
func (r *RedisStore) Subscribe(ctx context.Context, key string, fn func()) (func(), error) {
	sub := r.client.Subscribe(ctx, r.channel(key))
	// Force the subscription to be established before returning, so callers
	// never miss a write that happens right after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		metrics.RecordStorageError("subscribe")
		return nil, fmt.Errorf("redis subscribe %s: %w", key, err)
	}

	done := make(chan struct{})
	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				fn()
			}
		}
	}()

	cancel := func() {
		close(done)
		_ = sub.Close()
	}
	return cancel, nil
}

// Close releases the client.
func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

func (r *RedisStore) channel(key string) string {
	return r.prefix + notifyChannelPrefix + key
}
