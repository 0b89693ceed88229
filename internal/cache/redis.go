package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devtinder/api/internal/config"
)

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
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // cache miss
	}
	return val, err
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.Client.Expire(ctx, key, ttl).Err()
}

// KeyForRequestCount generates the Redis key for a user's pending received
// request count.
func (c *RedisCache) KeyForRequestCount(userID uint64) string {
	return fmt.Sprintf("requests:count:%d", userID)
}

// GetRequestCount reads the cached pending request count. Returns ok=false
// on a cache miss.
func (c *RedisCache) GetRequestCount(ctx context.Context, userID uint64) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForRequestCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat garbage as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, c.KeyForRequestCount(userID), time.Hour).Err()
	return n, true, nil
}

// SetRequestCount stores the pending request count with a 1h TTL.
func (c *RedisCache) SetRequestCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForRequestCount(userID), count, time.Hour).Err()
}

// InvalidateRequestCount drops the cached count after a ledger write.
func (c *RedisCache) InvalidateRequestCount(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForRequestCount(userID)).Err()
}

// ChannelForUser names the live chat channel for a user. Matches the event
// name the client subscribes to.
func (c *RedisCache) ChannelForUser(userID uint64) string {
	return fmt.Sprintf("chat:%d", userID)
}

// Publish pushes a payload onto a user's live channel. Best effort: an error
// means currently-connected subscribers miss the message, nothing is queued.
func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a pub/sub subscription on the given channel. The caller
// owns the returned subscription and must Close it.
func (c *RedisCache) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.Client.Subscribe(ctx, channel)
}
