package database

import (
	"context"
	"fmt"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisDialTimeout     = 5 * time.Second
	defaultRedisPoolSize        = 10
	defaultRedisMinIdleConns    = 2
	defaultRedisConnMaxIdleTime = 5 * time.Minute
)

// NewRedisClient connects to cfg.URL (redis:// or rediss://) and verifies
// the connection with PING
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisOptions parses cfg.URL and fills in pool defaults the URL left unset
func RedisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisDialTimeout
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultRedisPoolSize
	}
	if opts.MinIdleConns <= 0 {
		opts.MinIdleConns = defaultRedisMinIdleConns
	}
	if opts.ConnMaxIdleTime <= 0 {
		opts.ConnMaxIdleTime = defaultRedisConnMaxIdleTime
	}

	return opts, nil
}

// RedisHealthCheck pings redis within ctx
func RedisHealthCheck(ctx context.Context, client redis.UniversalClient) error {
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
