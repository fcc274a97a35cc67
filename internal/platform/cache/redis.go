package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const (
	keyNamespace  = "eduvista:"
	scanBatchSize = 100
)

// Redis is a Cache backed by a shared Redis instance.
type Redis struct {
	client *redis.Client
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr string
	DB   int
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, eris.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{Addr: opts.Addr, DB: opts.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "pinging redis at %s", opts.Addr)
	}

	return &Redis{client: client}, nil
}

var _ Cache = (*Redis)(nil)

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, keyNamespace+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, eris.Wrapf(err, "reading cache key: %s", key)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyNamespace+key, value, ttl).Err(); err != nil {
		return eris.Wrapf(err, "writing cache key: %s", key)
	}
	return nil
}

func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, keyNamespace+prefix+"*", scanBatchSize).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return eris.Wrapf(err, "scanning cache prefix: %s", prefix)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return eris.Wrapf(err, "deleting cache prefix: %s", prefix)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
