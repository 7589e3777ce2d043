package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a NumberCache backed by a Redis string key.
type RedisCache struct {
	client *redis.Client
	key    string
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisCache connects to Redis. An unreachable server is logged and not
// fatal; numbering falls back to the transition log.
func NewRedisCache(opts RedisOptions, logger *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis for committee number cache", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", opts.Addr))
	}

	return NewRedisCacheFromClient(client, opts.Key)
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, key string) *RedisCache {
	if key == "" {
		key = DefaultKey
	}
	return &RedisCache{client: client, key: key}
}

func (r *RedisCache) Get(ctx context.Context) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisCache) Set(ctx context.Context, number string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key, number, ttl).Err()
}

func (r *RedisCache) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Ping verifies Redis connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisCache) Close() {
	if r != nil && r.client != nil {
		_ = r.client.Close()
	}
}
