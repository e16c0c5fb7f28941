package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/cache"
	"github.com/ghuser/orderdesk/pkg/logger"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
	"github.com/ghuser/orderdesk/services/order/domain/models"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
)

// OrderLine is one requested order.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// EnqueueResult reports a bulk process request.
type EnqueueResult struct {
	Enqueued []uuid.UUID
	// Skipped holds ids that are not pending, unknown or outside the caller's scope.
	Skipped []uuid.UUID
}

// OrderServiceDeps are the collaborators of an OrderService. Cache may be nil.
type OrderServiceDeps struct {
	Orders  repositories.OrderRepository
	Catalog ProductCatalog
	Queue   TaskQueue
	Policy  FailurePolicy
	Tx      Transactor
	Cache   StatusCache
	Log     logger.Logger
}

// OrderService handles the order operations callers invoke directly.
// Processing itself happens in workers through the Processor.
type OrderService struct {
	OrderServiceDeps
}

// NewOrderService returns an OrderService.
func NewOrderService(deps OrderServiceDeps) *OrderService {
	return &OrderService{OrderServiceDeps: deps}
}

// Create places a pending order. The stock check is advisory: it reads the
// current stock and never reserves it. The processor's decrement decides.
func (s *OrderService) Create(ctx context.Context, id auth.Identity, line OrderLine) (*models.Order, error) {
	if err := id.Require(auth.RoleAdmin, auth.RoleOperator); err != nil {
		return nil, err
	}
	o, err := s.prepare(ctx, id, line, 0)
	if err != nil {
		return nil, err
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.Log.InfoContext(ctx, "order created",
		"order_id", o.ID,
		"product_id", o.ProductID,
		"quantity", o.Quantity,
		"created_by", o.CreatedBy,
	)
	return o, nil
}

// BulkCreate places all lines or none. Quantities requested for the same
// product within the batch count against its stock together.
func (s *OrderService) BulkCreate(ctx context.Context, id auth.Identity, lines []OrderLine) ([]*models.Order, error) {
	if err := id.Require(auth.RoleAdmin, auth.RoleOperator); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no orders given", orderdomain.ErrInvalidOrder)
	}

	orders := make([]*models.Order, 0, len(lines))
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		requested := make(map[uuid.UUID]int, len(lines))
		for i, line := range lines {
			o, err := s.prepare(ctx, id, line, requested[line.ProductID])
			if err != nil {
				return fmt.Errorf("order %d: %w", i, err)
			}
			if err := s.Orders.Create(ctx, o); err != nil {
				return fmt.Errorf("order %d: save: %w", i, err)
			}
			requested[line.ProductID] += line.Quantity
			orders = append(orders, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.InfoContext(ctx, "orders created in bulk", "count", len(orders), "created_by", id.AccountID)
	return orders, nil
}

// prepare validates a line against the product and builds the order.
// alreadyRequested is stock claimed by earlier lines of the same batch.
func (s *OrderService) prepare(ctx context.Context, id auth.Identity, line OrderLine, alreadyRequested int) (*models.Order, error) {
	if line.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", orderdomain.ErrInvalidOrder)
	}
	product, err := s.Catalog.Product(ctx, id.Scope(), line.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product %s is inactive", orderdomain.ErrInvalidOrder, product.SKU)
	}
	if available := product.StockQuantity - alreadyRequested; line.Quantity > available {
		return nil, fmt.Errorf("%w: requested %d of %s, %d available",
			orderdomain.ErrInsufficientStock, line.Quantity, product.SKU, available)
	}

	o := models.NewOrder(product, id.AccountID, line.Quantity)
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", orderdomain.ErrInvalidOrder, err)
	}
	return o, nil
}

// Get returns an order visible to the caller.
func (s *OrderService) Get(ctx context.Context, id auth.Identity, orderID uuid.UUID) (*models.Order, error) {
	o, err := s.load(ctx, id, id.OwnScope(), orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// load reads an order through scope and rejects a result outside the
// caller's company as not found.
func (s *OrderService) load(ctx context.Context, id auth.Identity, scope auth.Scope, orderID uuid.UUID) (*models.Order, error) {
	o, err := s.Orders.Get(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	if !id.CanAccess(o) {
		s.Log.WarnContext(ctx, "order outside caller's company dropped",
			"order_id", orderID,
			"company_id", o.CompanyID,
			"account_id", id.AccountID,
		)
		return nil, orderdomain.ErrOrderNotFound
	}
	return o, nil
}

// Status serves the polling read model, falling back to the database on a miss.
func (s *OrderService) Status(ctx context.Context, id auth.Identity, orderID uuid.UUID) (*cache.CachedOrderStatus, error) {
	scope := id.OwnScope()
	if s.Cache != nil && !id.Superuser {
		cached, err := s.Cache.Get(ctx, id.CompanyID, orderID)
		switch {
		case err == nil:
			if !scope.Allows(cached.CompanyID, cached.CreatedBy) {
				return nil, orderdomain.ErrOrderNotFound
			}
			return cached, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			s.Log.WarnContext(ctx, "order status cache read failed", "order_id", orderID, "error", err)
		}
	}

	o, err := s.load(ctx, id, scope, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}
	writeStatus(ctx, s.Cache, s.Log, o)
	return cachedStatus(o), nil
}

// List returns a page of orders visible to the caller. Operators only see
// their own orders.
func (s *OrderService) List(ctx context.Context, id auth.Identity, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	orders, total, err := s.Orders.List(ctx, id.OwnScope(), opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// Enqueue hands a pending order to the processing workers.
func (s *OrderService) Enqueue(ctx context.Context, id auth.Identity, orderID uuid.UUID) error {
	if err := id.Require(auth.RoleAdmin, auth.RoleOperator); err != nil {
		return err
	}
	o, err := s.load(ctx, id, id.OwnScope(), orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if !o.CanProcess() {
		return fmt.Errorf("%w: order is %s", orderdomain.ErrOrderNotPending, o.Status)
	}
	if err := s.Queue.EnqueueProcessing(ctx, o); err != nil {
		return fmt.Errorf("enqueue order: %w", err)
	}
	s.Log.InfoContext(ctx, "order enqueued", "order_id", o.ID, "by", id.AccountID)
	return nil
}

// EnqueueMany hands every pending order among orderIDs to the workers and
// reports the rest as skipped.
func (s *OrderService) EnqueueMany(ctx context.Context, id auth.Identity, orderIDs []uuid.UUID) (EnqueueResult, error) {
	var res EnqueueResult
	if err := id.Require(auth.RoleAdmin, auth.RoleOperator); err != nil {
		return res, err
	}
	orders, err := s.Orders.ListByIDs(ctx, id.OwnScope(), orderIDs)
	if err != nil {
		return res, fmt.Errorf("load orders: %w", err)
	}

	pending := make(map[uuid.UUID]*models.Order, len(orders))
	for _, o := range orders {
		if o.CanProcess() && id.CanAccess(o) {
			pending[o.ID] = o
		}
	}
	batch := make([]*models.Order, 0, len(pending))
	for _, orderID := range orderIDs {
		if o, ok := pending[orderID]; ok {
			res.Enqueued = append(res.Enqueued, orderID)
			batch = append(batch, o)
			delete(pending, orderID)
		} else {
			res.Skipped = append(res.Skipped, orderID)
		}
	}

	if err := s.Queue.EnqueueProcessing(ctx, batch...); err != nil {
		return EnqueueResult{}, fmt.Errorf("enqueue orders: %w", err)
	}
	s.Log.InfoContext(ctx, "orders enqueued",
		"enqueued", len(res.Enqueued),
		"skipped", len(res.Skipped),
		"by", id.AccountID,
	)
	return res, nil
}

// Retry re-enqueues a processed failure.
func (s *OrderService) Retry(ctx context.Context, id auth.Identity, orderID uuid.UUID) error {
	if err := id.Require(auth.RoleAdmin, auth.RoleOperator); err != nil {
		return err
	}
	o, err := s.load(ctx, id, id.OwnScope(), orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if !o.CanRetry() {
		return fmt.Errorf("%w: order is %s, processed=%t", orderdomain.ErrOrderNotRetryable, o.Status, o.HasBeenProcessed)
	}
	if err := s.Queue.EnqueueProcessing(ctx, o); err != nil {
		return fmt.Errorf("enqueue retry: %w", err)
	}
	s.Log.InfoContext(ctx, "order retry enqueued", "order_id", o.ID, "attempts", o.Attempts, "by", id.AccountID)
	return nil
}

// SetStatus is the administrative status correction. Stock is never touched.
// A correction to failed on a processed order is charged to its creator in
// the same transaction.
func (s *OrderService) SetStatus(ctx context.Context, id auth.Identity, orderID uuid.UUID, next models.Status) (*models.Order, error) {
	if err := id.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		updated *models.Order
		charged bool
		blocked bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.load(ctx, id, id.Scope(), orderID)
		if err != nil {
			return err
		}
		if charged, err = o.CorrectStatus(next); err != nil {
			return err
		}
		if updated, err = s.Orders.SetStatus(ctx, id.Scope(), o.ID, o.Status, next); err != nil {
			return err
		}
		if charged {
			if blocked, err = s.Policy.RecordProcessedFailure(ctx, o.CreatedBy); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}

	s.Log.InfoContext(ctx, "order status corrected",
		"order_id", updated.ID,
		"status", updated.Status,
		"failure_charged", charged,
		"account_blocked", blocked,
		"by", id.AccountID,
	)
	writeStatus(ctx, s.Cache, s.Log, updated)
	return updated, nil
}
