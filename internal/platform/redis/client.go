// Package redis wraps the go-redis client behind the process config. Redis
// is optional here: it only backs the live-results cache, and an empty URL
// disables it without changing any other wiring.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ballotbox/internal/platform/config"
)

type Client struct {
	*redis.Client
}

// New connects using cfg and verifies the connection with a ping. A nil
// client (empty URL) means the caller runs without a results cache.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
