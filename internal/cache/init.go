package cache

import (
	"context"
	"time"

	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/logger"
	redisclient "github.com/nextstep/nextstep/internal/redis"
)

// CacheType selects the cache backing store.
type CacheType string

const (
	CacheTypeInMemory CacheType = "inmemory"
	CacheTypeRedis    CacheType = "redis"
)

// noopCache is used when caching is disabled.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) (interface{}, bool)             { return nil, false }
func (noopCache) Set(ctx context.Context, key string, v interface{}, _ time.Duration) {}
func (noopCache) Delete(ctx context.Context, key string)                              {}
func (noopCache) DeleteByPrefix(ctx context.Context, prefix string)                   {}
func (noopCache) Flush(ctx context.Context)                                           {}

// Initialize picks the cache implementation from configuration. The Redis
// client is optional and only required when cache.type is "redis".
func Initialize(cfg *config.Configuration, redisClient *redisclient.Client, log *logger.Logger) Cache {
	if !cfg.Cache.Enabled {
		log.Infow("cache disabled")
		return noopCache{}
	}

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		if redisClient == nil {
			log.Warnw("redis cache configured without a redis client, falling back to in-memory")
			return NewInMemoryCache()
		}
		log.Infow("cache initialized", "type", CacheTypeRedis)
		return NewRedisCache(redisClient, log)
	default:
		log.Infow("cache initialized", "type", CacheTypeInMemory)
		return NewInMemoryCache()
	}
}
