// Package cache keeps derived per-user data in Redis: computed snapshots, the latest
// external analysis, and stored responses for idempotent requests.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache: key not found")

const keyPrefix = "moodlens:"

// Config holds the configuration for the Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Addr:             "localhost:6379",
		PoolSize:         20,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
	}
}

// Client wraps the Redis client shared by the caches in this package
type Client struct {
	rdb              redis.UniversalClient
	operationTimeout time.Duration
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("cache: address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return Wrap(rdb, cfg.OperationTimeout), nil
}

// Wrap builds a Client around an existing connection
func Wrap(rdb redis.UniversalClient, operationTimeout time.Duration) *Client {
	if operationTimeout <= 0 {
		operationTimeout = 2 * time.Second
	}
	return &Client{rdb: rdb, operationTimeout: operationTimeout}
}

// Close releases the connection pool
func (c *Client) Close() error {
	return c.rdb.Close()
}

// HealthCheck pings Redis
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// withTimeout bounds a call unless the caller already set a deadline
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, c.operationTimeout)
	}
	return ctx, func() {}
}

func (c *Client) getBytes(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, nil
}

func (c *Client) setBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
