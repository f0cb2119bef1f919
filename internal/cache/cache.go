package cache

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	ExpiryDefaultInMemory = 30 * time.Minute
	ExpiryDefaultRedis    = 5 * time.Minute
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache is the process-level cache abstraction. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

// UnmarshalValue converts a cached value to the requested type. The in-memory
// cache stores live objects while the Redis cache stores JSON strings; this
// handles both.
func UnmarshalValue[T any](value interface{}) (*T, bool) {
	if value == nil {
		return nil, false
	}

	if typed, ok := value.(*T); ok {
		return typed, true
	}
	if typed, ok := value.(T); ok {
		return &typed, true
	}

	if str, ok := value.(string); ok {
		var result T
		if err := json.Unmarshal([]byte(str), &result); err == nil {
			return &result, true
		}
	}
	return nil, false
}
