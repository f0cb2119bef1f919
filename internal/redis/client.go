package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/logger"
)

// Client wraps the go-redis client so callers never construct options
// themselves.
type Client struct {
	rdb *redis.Client
	log *logger.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Infow("connected to redis", "address", cfg.Redis.Address, "db", cfg.Redis.DB)
	return &Client{rdb: rdb, log: log}, nil
}

// GetClient returns the underlying go-redis client.
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
