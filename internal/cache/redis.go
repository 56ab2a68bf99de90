package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const prefix = "lso:cache"

// Dial connects to redis and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "cache.Dial"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}

// Redis keeps one version counter per namespace. Entries are written under
// the current version; invalidation bumps the counter and the stale entries
// expire on their own.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func versionKey(ns string) string {
	return fmt.Sprintf("%s:%s:v", prefix, ns)
}

func entryKey(ns string, ver int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", prefix, ns, ver, key)
}

func (r *Redis) Version(ctx context.Context, ns string) (int64, error) {
	const op = "cache.Redis.Version"

	v, err := r.client.Get(ctx, versionKey(ns)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (r *Redis) Get(ctx context.Context, ns, key string, dst any) error {
	const op = "cache.Redis.Get"

	ver, err := r.Version(ctx, ns)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b, err := r.client.Get(ctx, entryKey(ns, ver, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Set writes under generation ver. After an invalidation that key is never
// read again and expires with the TTL.
func (r *Redis) Set(ctx context.Context, ns, key string, ver int64, v any) error {
	const op = "cache.Redis.Set"

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, entryKey(ns, ver, key), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, namespaces ...string) error {
	const op = "cache.Redis.Invalidate"

	if len(namespaces) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, ns := range namespaces {
		pipe.Incr(ctx, versionKey(ns))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
