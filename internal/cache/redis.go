package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trailnet/trailnet-backend/internal/config"
)

// CounterTTL bounds how long a cached follower count survives without a
// read or write. Stale counts self-heal from the DB after expiry.
const CounterTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// KeyForFollowerCount generates the Redis key for a user's follower count.
func (c *RedisCache) KeyForFollowerCount(userID string) string {
	return fmt.Sprintf("followers:count:%s", userID)
}

// UpdateFollowerCount stores a fresh count, refreshing the TTL.
func (c *RedisCache) UpdateFollowerCount(ctx context.Context, userID string, count int64) error {
	return c.Client.Set(ctx, c.KeyForFollowerCount(userID), count, CounterTTL).Err()
}

// GetFollowerCount reads a cached count. A cache miss returns ok=false;
// a hit refreshes the TTL since the user is evidently active.
func (c *RedisCache) GetFollowerCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForFollowerCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	_ = c.Client.Expire(ctx, key, CounterTTL).Err()
	return n, true, nil
}
