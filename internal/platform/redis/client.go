// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides the client behind the role profile cache.

The cache sits on the authorization path of every request, so a slow Redis
must fail as fast as a slow PostgreSQL: command timeouts follow the store
timeout and honour the caller's deadline. Nothing stored in Redis is
authoritative. A miss or an outage falls back to the relational store.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	pingTimeout = 2 * time.Second

	poolSize     = 10
	minIdleConns = 2
	maxIdleConns = 5

	clientName = "helphub-authz"
)

/*
ParseOptions builds client options for redisURL.

Parameters:
  - redisURL: redis:// or rediss:// URL
  - storeTimeout: Upper bound for one cache command

Returns:
  - *redis.Options: Tuned options
  - error: Malformed URL or non-positive timeout
*/
func ParseOptions(redisURL string, storeTimeout time.Duration) (*redis.Options, error) {
	if storeTimeout <= 0 {
		return nil, fmt.Errorf("redis: store timeout must be positive, got %s", storeTimeout)
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.ClientName = clientName
	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxIdleConns = maxIdleConns

	options.DialTimeout = dialTimeout
	options.ReadTimeout = storeTimeout
	options.WriteTimeout = storeTimeout
	options.PoolTimeout = storeTimeout
	options.ContextTimeoutEnabled = true

	return options, nil
}

// NewClient connects to Redis and pings it once.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - storeTimeout: Command timeout.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, storeTimeout time.Duration, logger *slog.Logger) (*redis.Client, error) {
	options, err := ParseOptions(redisURL, storeTimeout)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
		slog.Duration("command_timeout", storeTimeout),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
