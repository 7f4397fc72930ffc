package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists each snapshot as a JSON document in its own Redis key.
// Useful when the monitor runs on ephemeral workers (CI runners) that cannot
// keep a state file between invocations.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
	prefix string
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(ctx context.Context, addr string, db int, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStore{
		client: client,
		ctx:    ctx,
		prefix: prefix,
	}
}

func (r *RedisStore) redisKey(key string) string {
	return r.prefix + ":" + key
}

// Load returns the snapshot for key; a missing key yields a zero snapshot.
func (r *RedisStore) Load(key string) (Snapshot, error) {
	data, err := r.client.Get(r.ctx, r.redisKey(key)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return snap, nil
}

// Save writes the snapshot immediately; a Redis SET of the full document is
// already atomic per key.
func (r *RedisStore) Save(key string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}

	if err := r.client.Set(r.ctx, r.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// Flush is a no-op; Save already persisted each key.
func (r *RedisStore) Flush() error {
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
