// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"market-intel/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// A cache round trip must stay well under the provider timeout.
const (
	redisDialTimeout = 2 * time.Second
	redisOpTimeout   = 500 * time.Millisecond
)

// RedisClient holds the pool behind the estimate cache.
type RedisClient struct {
	Client *redis.Client
	addr   string
}

// NewRedis builds the pool without dialing; use Ping to check the server.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   "market-intel",
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisOpTimeout,
		WriteTimeout: redisOpTimeout,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	return &RedisClient{Client: rdb, addr: cfg.Address}
}

// Ping checks the server answers. A zero timeout leaves ctx as the only bound.
func (c *RedisClient) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.addr, err)
	}
	return nil
}

// PoolStats is a log-friendly snapshot of the pool.
func (c *RedisClient) PoolStats() map[string]interface{} {
	s := c.Client.PoolStats()
	return map[string]interface{}{
		"address":    c.addr,
		"totalConns": s.TotalConns,
		"idleConns":  s.IdleConns,
		"timeouts":   s.Timeouts,
	}
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
