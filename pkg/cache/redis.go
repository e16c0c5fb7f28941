// Package cache holds the Redis-backed pieces shared by the API and the
// worker: the order status read model, the worker heartbeat and the client
// the console session store runs on.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/logger"
)

// RedisClient is a redis.Client whose keys live under a per-service namespace,
// so several deployments can share one Redis database.
type RedisClient struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient connects to cfg.RedisURL and waits for the server to answer
// a ping. Up to cfg.RedisConnectRetries failed pings are retried with
// exponential backoff.
func NewRedisClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*RedisClient, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	opts.ClientName = cfg.ServiceName
	opts.PoolSize = max(cfg.RedisPoolSize, 1)
	opts.MinIdleConns = min(2, opts.PoolSize)
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(max(cfg.RedisConnectRetries, 0))),
		ctx,
	)
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	}
	notify := func(err error, next time.Duration) {
		log.WarnContext(ctx, "redis not ready, retrying", "error", err, "next_attempt_in", next)
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisClient{client: rdb, namespace: cfg.ServiceName}, nil
}

// Key joins parts under the client namespace, e.g. "orderdesk:order_status:<company>:<order>".
func (r *RedisClient) Key(parts ...string) string {
	if r.namespace == "" {
		return strings.Join(parts, ":")
	}
	return r.namespace + ":" + strings.Join(parts, ":")
}

// Ping implements httpx.HealthChecker.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis: close: %w", err)
	}
	return nil
}

// Client exposes the raw client for the session store.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
