package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/cache"
	"github.com/ghuser/orderdesk/services/order/domain/models"
)

// StockLedger performs the authoritative conditional stock decrement. It must
// join the transaction carried by ctx.
type StockLedger interface {
	Decrement(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
}

// FailurePolicy charges a processed order failure to the account that created
// the order and reports whether the account became blocked.
type FailurePolicy interface {
	RecordProcessedFailure(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// Transactor runs fn in one database transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TaskQueue hands orders to the processing workers. Each task carries the
// order's attempt count as read by the caller. When ctx carries a transaction
// the tasks are published only if it commits.
type TaskQueue interface {
	EnqueueProcessing(ctx context.Context, orders ...*models.Order) error
}

// ProductCatalog resolves a product for order creation.
type ProductCatalog interface {
	Product(ctx context.Context, scope auth.Scope, id uuid.UUID) (models.ProductSnapshot, error)
}

// Approver is the external approval check run for each claimed order.
type Approver interface {
	Approve(ctx context.Context, o *models.Order) (bool, error)
}

// StatusCache is the polling read model for order status.
type StatusCache interface {
	Get(ctx context.Context, companyID, orderID uuid.UUID) (*cache.CachedOrderStatus, error)
	Set(ctx context.Context, s *cache.CachedOrderStatus) error
}
