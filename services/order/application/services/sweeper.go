package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/telemetry"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
)

// Sweeper fails orders a worker claimed but never settled. Reclaimed orders
// are processed failures, so they can be retried, but their creators are not
// charged: a crashed worker is not the account's fault.
type Sweeper struct {
	orders  repositories.OrderRepository
	timeout time.Duration
	cache   StatusCache
	metrics *telemetry.Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewSweeper returns a Sweeper that reclaims orders held longer than timeout.
func NewSweeper(orders repositories.OrderRepository, timeout time.Duration, statusCache StatusCache, metrics *telemetry.Metrics, log logger.Logger) *Sweeper {
	return &Sweeper{
		orders:  orders,
		timeout: timeout,
		cache:   statusCache,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Sweep reclaims stuck orders and returns how many it failed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.timeout)
	reclaimed, err := s.orders.ReclaimStuck(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep stuck orders: %w", err)
	}
	for _, o := range reclaimed {
		s.log.WarnContext(ctx, "stuck order failed by sweep",
			"order_id", o.ID,
			"attempt", o.Attempts,
			"created_by", o.CreatedBy,
		)
		writeStatus(ctx, s.cache, s.log, o)
	}
	n := int64(len(reclaimed))
	s.metrics.OrdersReclaimed(ctx, n)
	return n, nil
}
