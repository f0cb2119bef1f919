package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nextstep/nextstep/internal/logger"
	redisclient "github.com/nextstep/nextstep/internal/redis"
)

const (
	// deleteRetryDelay is how long to wait before retrying a failed delete.
	deleteRetryDelay = 100 * time.Millisecond

	// scanCount is how many keys SCAN visits per round trip.
	scanCount = 100
)

// RedisCache implements Cache using Redis. Values are stored as JSON strings.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(client *redisclient.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client: client.GetClient(),
		log:    log,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Errorw("redis GET error", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration == 0 {
		expiration = ExpiryDefaultRedis
	}

	var strValue string
	switch v := value.(type) {
	case string:
		strValue = v
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			c.log.Errorw("failed to marshal cache value", "key", key, "error", err)
			return
		}
		strValue = string(jsonBytes)
	}

	if err := c.client.Set(ctx, key, strValue, expiration).Err(); err != nil {
		c.log.Errorw("redis SET error", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err == nil {
		return
	}

	retryCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	time.Sleep(deleteRetryDelay)

	if err := c.client.Del(retryCtx, key).Err(); err != nil {
		c.log.Errorw("redis DELETE retry failed", "key", key, "error", err)
	}
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", scanCount).Iterator()

	var keysToDelete []string
	for iter.Next(ctx) {
		keysToDelete = append(keysToDelete, iter.Val())
		if len(keysToDelete) >= 1000 {
			if err := c.client.Del(ctx, keysToDelete...).Err(); err != nil {
				c.log.Errorw("redis DEL batch error", "prefix", prefix, "error", err)
			}
			keysToDelete = keysToDelete[:0]
		}
	}
	if len(keysToDelete) > 0 {
		if err := c.client.Del(ctx, keysToDelete...).Err(); err != nil {
			c.log.Errorw("redis DEL batch error", "prefix", prefix, "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Errorw("redis SCAN error", "prefix", prefix, "error", err)
	}
}

func (c *RedisCache) Flush(ctx context.Context) {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.log.Errorw("redis FLUSHDB error", "error", err)
	}
}
