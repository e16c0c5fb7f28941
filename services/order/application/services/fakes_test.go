package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/cache"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
	"github.com/ghuser/orderdesk/services/order/domain/models"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
)

// journalTx emulates a database transaction: collaborators register undo
// functions and a failed fn runs them in reverse.
type journalTx struct {
	mu        sync.Mutex
	calls     int
	rollbacks int
}

type journalKey struct{}

type journal struct{ undo []func() }

func (t *journalTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}
	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		t.mu.Lock()
		t.rollbacks++
		t.mu.Unlock()
		return err
	}
	return nil
}

func onRollback(ctx context.Context, f func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, f)
	}
}

// fakeOrders mirrors the conditional UPDATEs of the PostgreSQL repository.
type fakeOrders struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Order
	now  time.Time
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[uuid.UUID]*models.Order{}, now: time.Now()}
}

func (f *fakeOrders) put(o *models.Order) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[o.ID] = o
	return o
}

func (f *fakeOrders) snapshot(id uuid.UUID) models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakeOrders) copyOf(o *models.Order) *models.Order {
	c := *o
	return &c
}

func (f *fakeOrders) Create(ctx context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[o.ID] = f.copyOf(o)
	onRollback(ctx, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.byID, o.ID)
	})
	return nil
}

func (f *fakeOrders) Get(_ context.Context, scope auth.Scope, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok || !scope.Allows(o.CompanyID, o.CreatedBy) {
		return nil, orderdomain.ErrOrderNotFound
	}
	return f.copyOf(o), nil
}

func (f *fakeOrders) List(_ context.Context, scope auth.Scope, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.byID {
		if scope.Allows(o.CompanyID, o.CreatedBy) && (opts.Status == "" || o.Status == opts.Status) {
			out = append(out, f.copyOf(o))
		}
	}
	return out, len(out), nil
}

func (f *fakeOrders) ListByIDs(_ context.Context, scope auth.Scope, ids []uuid.UUID) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, id := range ids {
		if o, ok := f.byID[id]; ok && scope.Allows(o.CompanyID, o.CreatedBy) {
			out = append(out, f.copyOf(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrders) Claim(_ context.Context, id uuid.UUID, attempt int) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok || !o.Claimable(attempt) {
		return nil, orderdomain.ErrOrderNotClaimable
	}
	o.Status = models.StatusProcessing
	o.Attempts++
	o.UpdatedAt = f.now
	return f.copyOf(o), nil
}

func (f *fakeOrders) Finish(ctx context.Context, id uuid.UUID, attempt int, status models.Status) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok || o.Status != models.StatusProcessing || o.Attempts != attempt {
		return nil, orderdomain.ErrStaleClaim
	}
	prev := *o
	o.Status = status
	o.HasBeenProcessed = true
	onRollback(ctx, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		*f.byID[id] = prev
	})
	return f.copyOf(o), nil
}

func (f *fakeOrders) ReclaimStuck(_ context.Context, cutoff time.Time) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.byID {
		if o.Status == models.StatusProcessing && o.UpdatedAt.Before(cutoff) {
			o.Status = models.StatusFailed
			o.HasBeenProcessed = true
			out = append(out, f.copyOf(o))
		}
	}
	return out, nil
}

func (f *fakeOrders) SetStatus(ctx context.Context, scope auth.Scope, id uuid.UUID, from, to models.Status) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok || o.Status != from || !scope.Allows(o.CompanyID, o.CreatedBy) {
		return nil, orderdomain.ErrInvalidTransition
	}
	prev := *o
	o.Status = to
	onRollback(ctx, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		*f.byID[id] = prev
	})
	return f.copyOf(o), nil
}

// fakeLedger is an atomic stock counter with rollback support.
type fakeLedger struct {
	mu    sync.Mutex
	stock map[uuid.UUID]int
	err   error
}

func (l *fakeLedger) Decrement(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.stock[productID] < quantity {
		return false, nil
	}
	l.stock[productID] -= quantity
	onRollback(ctx, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.stock[productID] += quantity
	})
	return true, nil
}

func (l *fakeLedger) of(productID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[productID]
}

// fakePolicy counts processed failures per account and blocks at three.
type fakePolicy struct {
	mu      sync.Mutex
	counts  map[uuid.UUID]int
	blocked map[uuid.UUID]bool
}

func newFakePolicy() *fakePolicy {
	return &fakePolicy{counts: map[uuid.UUID]int{}, blocked: map[uuid.UUID]bool{}}
}

func (p *fakePolicy) RecordProcessedFailure(ctx context.Context, accountID uuid.UUID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[accountID]++
	wasBlocked := p.blocked[accountID]
	if p.counts[accountID] >= 3 {
		p.blocked[accountID] = true
	}
	onRollback(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.counts[accountID]--
		p.blocked[accountID] = wasBlocked
	})
	return p.blocked[accountID] && !wasBlocked, nil
}

func (p *fakePolicy) count(accountID uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[accountID]
}

func (p *fakePolicy) isBlocked(accountID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.blocked[accountID]
}

// fixedApprover returns the same decision every time, optionally running hook first.
type fixedApprover struct {
	approve bool
	err     error
	hook    func()
}

func (a fixedApprover) Approve(context.Context, *models.Order) (bool, error) {
	if a.hook != nil {
		a.hook()
	}
	return a.approve, a.err
}

type fakeQueue struct {
	mu       sync.Mutex
	ids      []uuid.UUID
	attempts []int
	err      error
}

func (q *fakeQueue) EnqueueProcessing(_ context.Context, orders ...*models.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	for _, o := range orders {
		q.ids = append(q.ids, o.ID)
		q.attempts = append(q.attempts, o.Attempts)
	}
	return nil
}

var errProductNotFound = errors.New("product not found")

type fakeCatalog struct {
	products map[uuid.UUID]models.ProductSnapshot
}

func (c *fakeCatalog) Product(_ context.Context, scope auth.Scope, id uuid.UUID) (models.ProductSnapshot, error) {
	p, ok := c.products[id]
	if !ok || (scope.CompanyID.Valid && scope.CompanyID.UUID != p.CompanyID) {
		return models.ProductSnapshot{}, errProductNotFound
	}
	return p, nil
}

type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*cache.CachedOrderStatus
	gets    int
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: map[uuid.UUID]*cache.CachedOrderStatus{}}
}

func (c *fakeStatusCache) Get(_ context.Context, companyID, orderID uuid.UUID) (*cache.CachedOrderStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	s, ok := c.entries[orderID]
	if !ok || s.CompanyID != companyID {
		return nil, cache.ErrCacheMiss
	}
	cp := *s
	return &cp, nil
}

func (c *fakeStatusCache) Set(_ context.Context, s *cache.CachedOrderStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.entries[s.OrderID] = &cp
	return nil
}

func (c *fakeStatusCache) status(orderID uuid.UUID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.entries[orderID]; ok {
		return s.Status
	}
	return ""
}
