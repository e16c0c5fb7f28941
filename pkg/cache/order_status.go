package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// OrderStatusTTL bounds how long a status survives without a write-through refresh.
	OrderStatusTTL = time.Hour

	orderStatusKeyPrefix = "order_status"
)

// ErrCacheMiss is returned when the key does not exist or has expired.
var ErrCacheMiss = errors.New("cache miss")

// CachedOrderStatus is the polling read model for an order's lifecycle.
type CachedOrderStatus struct {
	OrderID          uuid.UUID `json:"order_id"`
	CompanyID        uuid.UUID `json:"company_id"`
	CreatedBy        uuid.UUID `json:"created_by"`
	Status           string    `json:"status"`
	HasBeenProcessed bool      `json:"has_been_processed"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OrderStatusCache stores order status hashes written through by the processor.
// Keys are scoped by company to prevent cross-tenant reads.
// Key format: "{namespace}:order_status:{companyID}:{orderID}"
type OrderStatusCache struct {
	client *RedisClient
}

func NewOrderStatusCache(r *RedisClient) *OrderStatusCache {
	return &OrderStatusCache{client: r}
}

// Get returns ErrCacheMiss when nothing is cached.
func (c *OrderStatusCache) Get(ctx context.Context, companyID, orderID uuid.UUID) (*CachedOrderStatus, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(companyID, orderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrCacheMiss
	}
	return decodeOrderStatus(vals)
}

// Set writes the status hash and refreshes its TTL in one pipeline.
func (c *OrderStatusCache) Set(ctx context.Context, s *CachedOrderStatus) error {
	key := c.key(s.CompanyID, s.OrderID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key, encodeOrderStatus(s))
	pipe.Expire(ctx, key, OrderStatusTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached status.
func (c *OrderStatusCache) Delete(ctx context.Context, companyID, orderID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(companyID, orderID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *OrderStatusCache) key(companyID, orderID uuid.UUID) string {
	return c.client.Key(orderStatusKeyPrefix, companyID.String(), orderID.String())
}

func encodeOrderStatus(s *CachedOrderStatus) map[string]any {
	return map[string]any{
		"order_id":           s.OrderID.String(),
		"company_id":         s.CompanyID.String(),
		"created_by":         s.CreatedBy.String(),
		"status":             s.Status,
		"has_been_processed": strconv.FormatBool(s.HasBeenProcessed),
		"updated_at":         s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeOrderStatus(vals map[string]string) (*CachedOrderStatus, error) {
	orderID, err := uuid.Parse(vals["order_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse order_id: %w", err)
	}
	companyID, err := uuid.Parse(vals["company_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse company_id: %w", err)
	}
	createdBy, err := uuid.Parse(vals["created_by"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_by: %w", err)
	}
	processed, err := strconv.ParseBool(vals["has_been_processed"])
	if err != nil {
		return nil, fmt.Errorf("cache parse has_been_processed: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	return &CachedOrderStatus{
		OrderID:          orderID,
		CompanyID:        companyID,
		CreatedBy:        createdBy,
		Status:           vals["status"],
		HasBeenProcessed: processed,
		UpdatedAt:        updatedAt,
	}, nil
}
