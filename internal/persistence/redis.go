package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talgya/planet-core/internal/logging"
)

const defaultRedisTimeout = 3 * time.Second

// RedisStore keeps values in Redis under a key prefix.
type RedisStore struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

// OpenRedis connects to the Redis server at url and verifies it answers.
func OpenRedis(url, prefix string, timeout time.Duration) (*RedisStore, error) {
	logger := logging.Component(nil, "redis").With("operation", "connect")

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Debug("redis connection established", "addr", opts.Addr, "db", opts.DB)
	return &RedisStore{rdb: rdb, prefix: prefix, timeout: timeout}, nil
}

func (r *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RedisStore) Get(key string) ([]byte, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisStore) Set(key string, value []byte) error {
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
