package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frontdesk-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection used for per-call conversation history.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis accepts a host:port address or a redis:// / rediss:// URL. Credentials and DB in a URL
// take precedence over the separate config fields.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 20
	opts.MinIdleConns = 2

	return &RedisClient{Client: redis.NewClient(opts)}, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return nil, errors.New("redis address is required")
	}
	if strings.Contains(address, "://") {
		opts, err := redis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
