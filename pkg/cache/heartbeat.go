package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const heartbeatKey = "worker_heartbeat"

// Workers beat every HeartbeatInterval; the key expires after HeartbeatTTL.
const (
	HeartbeatInterval = 10 * time.Second
	HeartbeatTTL      = 3 * HeartbeatInterval
)

// ErrNoHeartbeat means no worker refreshed its heartbeat within the TTL.
var ErrNoHeartbeat = errors.New("no worker heartbeat")

// WorkerHeartbeat lets the API health check see that at least one worker is alive.
// Workers call Beat on an interval shorter than ttl; Ping fails once every worker is gone.
type WorkerHeartbeat struct {
	client *RedisClient
	ttl    time.Duration
}

func NewWorkerHeartbeat(r *RedisClient, ttl time.Duration) *WorkerHeartbeat {
	return &WorkerHeartbeat{client: r, ttl: ttl}
}

// Beat records that workerID is alive.
func (h *WorkerHeartbeat) Beat(ctx context.Context, workerID string) error {
	if err := h.client.Client().Set(ctx, h.client.Key(heartbeatKey), workerID, h.ttl).Err(); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

// Ping implements httpx.HealthChecker.
func (h *WorkerHeartbeat) Ping(ctx context.Context) error {
	n, err := h.client.Client().Exists(ctx, h.client.Key(heartbeatKey)).Result()
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	if n == 0 {
		return ErrNoHeartbeat
	}
	return nil
}
