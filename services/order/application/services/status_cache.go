package services

import (
	"context"

	"github.com/ghuser/orderdesk/pkg/cache"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/services/order/domain/models"
)

func cachedStatus(o *models.Order) *cache.CachedOrderStatus {
	return &cache.CachedOrderStatus{
		OrderID:          o.ID,
		CompanyID:        o.CompanyID,
		CreatedBy:        o.CreatedBy,
		Status:           string(o.Status),
		HasBeenProcessed: o.HasBeenProcessed,
		UpdatedAt:        o.UpdatedAt,
	}
}

// writeStatus refreshes the read model. It is best effort: the database row
// stays the source of truth and a failed write only costs a cache miss.
func writeStatus(ctx context.Context, c StatusCache, log logger.Logger, o *models.Order) {
	if c == nil {
		return
	}
	if err := c.Set(ctx, cachedStatus(o)); err != nil {
		log.WarnContext(ctx, "order status cache write failed", "order_id", o.ID, "error", err)
	}
}
