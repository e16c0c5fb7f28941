package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/cache"
	"github.com/ghuser/orderdesk/pkg/logger"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
	"github.com/ghuser/orderdesk/services/order/domain/models"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
)

type serviceFixture struct {
	orders  *fakeOrders
	queue   *fakeQueue
	policy  *fakePolicy
	tx      *journalTx
	cache   *fakeStatusCache
	svc     *OrderService
	product models.ProductSnapshot
	admin   auth.Identity
}

func newServiceFixture(stock int) *serviceFixture {
	companyID := uuid.New()
	product := models.ProductSnapshot{ID: uuid.New(), CompanyID: companyID, SKU: "WID-1", StockQuantity: stock, IsActive: true}
	inactive := models.ProductSnapshot{ID: uuid.New(), CompanyID: companyID, SKU: "OLD-1", StockQuantity: stock}
	f := &serviceFixture{
		orders:  newFakeOrders(),
		queue:   &fakeQueue{},
		policy:  newFakePolicy(),
		tx:      &journalTx{},
		cache:   newFakeStatusCache(),
		product: product,
		admin:   auth.Identity{AccountID: uuid.New(), CompanyID: companyID, Role: auth.RoleAdmin},
	}
	f.svc = NewOrderService(OrderServiceDeps{
		Orders: f.orders,
		Catalog: &fakeCatalog{products: map[uuid.UUID]models.ProductSnapshot{
			product.ID:  product,
			inactive.ID: inactive,
		}},
		Queue:  f.queue,
		Policy: f.policy,
		Tx:     f.tx,
		Cache:  f.cache,
		Log:    logger.Nop(),
	})
	return f
}

func (f *serviceFixture) as(role auth.Role) auth.Identity {
	return auth.Identity{AccountID: uuid.New(), CompanyID: f.admin.CompanyID, Role: role}
}

func (f *serviceFixture) inactiveID() uuid.UUID {
	for id, p := range f.svc.Catalog.(*fakeCatalog).products {
		if !p.IsActive {
			return id
		}
	}
	return uuid.Nil
}

func TestOrderService_Create(t *testing.T) {
	f := newServiceFixture(5)
	operator := f.as(auth.RoleOperator)

	o, err := f.svc.Create(context.Background(), operator, OrderLine{ProductID: f.product.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.CreatedBy != operator.AccountID || o.CompanyID != f.product.CompanyID || o.Status != models.StatusPending {
		t.Fatalf("unexpected order %+v", o)
	}
	if len(f.queue.ids) != 0 {
		t.Fatal("creation must not enqueue processing")
	}

	tests := []struct {
		name    string
		id      auth.Identity
		line    OrderLine
		wantErr error
	}{
		{name: "viewer", id: f.as(auth.RoleViewer), line: OrderLine{ProductID: f.product.ID, Quantity: 1}, wantErr: auth.ErrForbidden},
		{name: "over stock", id: operator, line: OrderLine{ProductID: f.product.ID, Quantity: 6}, wantErr: orderdomain.ErrInsufficientStock},
		{name: "zero quantity", id: operator, line: OrderLine{ProductID: f.product.ID, Quantity: 0}, wantErr: orderdomain.ErrInvalidOrder},
		{name: "inactive product", id: operator, line: OrderLine{ProductID: f.inactiveID(), Quantity: 1}, wantErr: orderdomain.ErrInvalidOrder},
		{name: "foreign product", id: auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: auth.RoleAdmin}, line: OrderLine{ProductID: f.product.ID, Quantity: 1}, wantErr: errProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), tt.id, tt.line); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOrderService_BulkCreateIsAllOrNothing(t *testing.T) {
	f := newServiceFixture(5)

	orders, err := f.svc.BulkCreate(context.Background(), f.admin, []OrderLine{
		{ProductID: f.product.ID, Quantity: 2},
		{ProductID: f.product.ID, Quantity: 3},
	})
	if err != nil || len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d err=%v", len(orders), err)
	}

	_, err = f.svc.BulkCreate(context.Background(), f.admin, []OrderLine{
		{ProductID: f.product.ID, Quantity: 3},
		{ProductID: f.product.ID, Quantity: 3},
	})
	if !errors.Is(err, orderdomain.ErrInsufficientStock) {
		t.Fatalf("batch total over stock must fail, got %v", err)
	}
	if _, total, _ := f.orders.List(context.Background(), auth.Scope{}, repositories.QueryOpts{}); total != 2 {
		t.Fatalf("failed batch must insert nothing, have %d orders", total)
	}

	if _, err := f.svc.BulkCreate(context.Background(), f.admin, nil); !errors.Is(err, orderdomain.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for empty batch, got %v", err)
	}
}

func TestOrderService_OperatorsSeeOwnOrders(t *testing.T) {
	f := newServiceFixture(10)
	alice, bob := f.as(auth.RoleOperator), f.as(auth.RoleOperator)
	aliceOrder, _ := f.svc.Create(context.Background(), alice, OrderLine{ProductID: f.product.ID, Quantity: 1})
	_, _ = f.svc.Create(context.Background(), bob, OrderLine{ProductID: f.product.ID, Quantity: 1})

	if _, err := f.svc.Get(context.Background(), bob, aliceOrder.ID); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("operator must not see another operator's order, got %v", err)
	}
	if _, total, _ := f.svc.List(context.Background(), alice, repositories.QueryOpts{}); total != 1 {
		t.Fatalf("operator list: expected 1, got %d", total)
	}
	if _, total, _ := f.svc.List(context.Background(), f.as(auth.RoleViewer), repositories.QueryOpts{}); total != 2 {
		t.Fatalf("viewer list: expected 2, got %d", total)
	}
	other := auth.Identity{AccountID: uuid.New(), CompanyID: uuid.New(), Role: auth.RoleAdmin}
	if _, total, _ := f.svc.List(context.Background(), other, repositories.QueryOpts{}); total != 0 {
		t.Fatalf("other company: expected 0, got %d", total)
	}
}

func TestOrderService_EnqueueAndRetry(t *testing.T) {
	f := newServiceFixture(10)
	o, _ := f.svc.Create(context.Background(), f.admin, OrderLine{ProductID: f.product.ID, Quantity: 1})

	if err := f.svc.Retry(context.Background(), f.admin, o.ID); !errors.Is(err, orderdomain.ErrOrderNotRetryable) {
		t.Fatalf("pending order is not retryable, got %v", err)
	}
	if err := f.svc.Enqueue(context.Background(), f.admin, o.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// Simulate a processed failure, then an approval.
	stored := f.orders.byID[o.ID]
	stored.Status, stored.HasBeenProcessed, stored.Attempts = models.StatusFailed, true, 1
	if err := f.svc.Enqueue(context.Background(), f.admin, o.ID); !errors.Is(err, orderdomain.ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending, got %v", err)
	}
	if err := f.svc.Retry(context.Background(), f.as(auth.RoleViewer), o.ID); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("viewer may not retry, got %v", err)
	}
	if err := f.svc.Retry(context.Background(), f.admin, o.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}

	stored.Status = models.StatusApproved
	if err := f.svc.Retry(context.Background(), f.admin, o.ID); !errors.Is(err, orderdomain.ErrOrderNotRetryable) {
		t.Fatalf("approved order is not retryable, got %v", err)
	}
	stored.Status, stored.HasBeenProcessed = models.StatusFailed, false
	if err := f.svc.Retry(context.Background(), f.admin, o.ID); !errors.Is(err, orderdomain.ErrOrderNotRetryable) {
		t.Fatalf("unprocessed failure is not retryable, got %v", err)
	}

	if len(f.queue.ids) != 2 || f.queue.ids[0] != o.ID || f.queue.ids[1] != o.ID {
		t.Fatalf("expected two tasks for the order, got %v", f.queue.ids)
	}
	if f.queue.attempts[0] != 0 || f.queue.attempts[1] != 1 {
		t.Fatalf("tasks must carry the attempt they may claim, got %v", f.queue.attempts)
	}
}

func TestOrderService_EnqueueMany(t *testing.T) {
	f := newServiceFixture(10)
	a, _ := f.svc.Create(context.Background(), f.admin, OrderLine{ProductID: f.product.ID, Quantity: 1})
	b, _ := f.svc.Create(context.Background(), f.admin, OrderLine{ProductID: f.product.ID, Quantity: 1})
	f.orders.byID[b.ID].Status = models.StatusApproved
	f.orders.byID[b.ID].HasBeenProcessed = true
	unknown := uuid.New()

	res, err := f.svc.EnqueueMany(context.Background(), f.admin, []uuid.UUID{a.ID, b.ID, unknown})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Enqueued) != 1 || res.Enqueued[0] != a.ID {
		t.Fatalf("unexpected enqueued %v", res.Enqueued)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("unexpected skipped %v", res.Skipped)
	}
	if len(f.queue.ids) != 1 {
		t.Fatalf("expected one task, got %v", f.queue.ids)
	}
}

func TestOrderService_SetStatus(t *testing.T) {
	f := newServiceFixture(10)
	o, _ := f.svc.Create(context.Background(), f.as(auth.RoleOperator), OrderLine{ProductID: f.product.ID, Quantity: 1})

	if _, err := f.svc.SetStatus(context.Background(), f.as(auth.RoleOperator), o.ID, models.StatusFailed); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("only admins correct status, got %v", err)
	}

	// Forcing an unprocessed order to failed is not charged.
	got, err := f.svc.SetStatus(context.Background(), f.admin, o.ID, models.StatusFailed)
	if err != nil || got.Status != models.StatusFailed {
		t.Fatalf("set failed: %+v err=%v", got, err)
	}
	if f.policy.count(o.CreatedBy) != 0 {
		t.Fatal("unprocessed failure must not be charged")
	}

	// A processed order corrected to failed is charged.
	f.orders.byID[o.ID].Status = models.StatusApproved
	f.orders.byID[o.ID].HasBeenProcessed = true
	if _, err := f.svc.SetStatus(context.Background(), f.admin, o.ID, models.StatusFailed); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if f.policy.count(o.CreatedBy) != 1 {
		t.Fatalf("expected one charge, got %d", f.policy.count(o.CreatedBy))
	}
	if f.cache.status(o.ID) != string(models.StatusFailed) {
		t.Fatal("status cache not refreshed")
	}

	if _, err := f.svc.SetStatus(context.Background(), f.admin, o.ID, models.StatusPending); !errors.Is(err, orderdomain.ErrInvalidTransition) {
		t.Fatalf("processed order cannot return to pending, got %v", err)
	}
}

// leakyOrders returns orders whatever the scope.
type leakyOrders struct{ *fakeOrders }

func (l leakyOrders) Get(ctx context.Context, _ auth.Scope, id uuid.UUID) (*models.Order, error) {
	return l.fakeOrders.Get(ctx, auth.Scope{}, id)
}

func TestOrderService_ForeignOrderIsNotFound(t *testing.T) {
	f := newServiceFixture(10)
	f.svc.Orders = leakyOrders{f.orders}
	foreign := models.NewOrder(models.ProductSnapshot{ID: uuid.New(), CompanyID: uuid.New(), IsActive: true}, uuid.New(), 1)
	f.orders.put(foreign)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, f.admin, foreign.ID); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("get: expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.svc.Status(ctx, f.admin, foreign.ID); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("status: expected ErrOrderNotFound, got %v", err)
	}
	if err := f.svc.Enqueue(ctx, f.admin, foreign.ID); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("enqueue: expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, f.admin, foreign.ID, models.StatusFailed); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("set status: expected ErrOrderNotFound, got %v", err)
	}
	if got := f.orders.snapshot(foreign.ID); got.Status != models.StatusPending {
		t.Fatalf("foreign order changed to %s", got.Status)
	}
	if len(f.queue.ids) != 0 {
		t.Fatalf("foreign order enqueued: %v", f.queue.ids)
	}

	super := auth.Identity{AccountID: uuid.New(), Superuser: true}
	if _, err := f.svc.Get(ctx, super, foreign.ID); err != nil {
		t.Fatalf("superusers see every tenant, got %v", err)
	}
}

func TestOrderService_StatusReadModel(t *testing.T) {
	f := newServiceFixture(10)
	alice := f.as(auth.RoleOperator)
	o, _ := f.svc.Create(context.Background(), alice, OrderLine{ProductID: f.product.ID, Quantity: 1})

	got, err := f.svc.Status(context.Background(), alice, o.ID)
	if err != nil || got.Status != string(models.StatusPending) {
		t.Fatalf("miss path: %+v err=%v", got, err)
	}
	if f.cache.status(o.ID) == "" {
		t.Fatal("miss must warm the cache")
	}

	_ = f.cache.Set(context.Background(), &cache.CachedOrderStatus{
		OrderID: o.ID, CompanyID: o.CompanyID, CreatedBy: o.CreatedBy, Status: string(models.StatusApproved),
	})
	got, err = f.svc.Status(context.Background(), alice, o.ID)
	if err != nil || got.Status != string(models.StatusApproved) {
		t.Fatalf("hit path: %+v err=%v", got, err)
	}

	if _, err := f.svc.Status(context.Background(), f.as(auth.RoleOperator), o.ID); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("cached entry must respect operator scope, got %v", err)
	}
}
