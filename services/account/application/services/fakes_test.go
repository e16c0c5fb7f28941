package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	"github.com/ghuser/orderdesk/services/account/domain/models"
)

// fakeAccounts mirrors the single-statement semantics of the PostgreSQL
// repository under a mutex.
type fakeAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Account
	err  error
}

func newFakeAccounts(accounts ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[uuid.UUID]*models.Account{}}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) Save(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == a.Username {
			return accountdomain.ErrAccountAlreadyExists
		}
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, accountdomain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, accountdomain.ErrAccountNotFound
}

func (f *fakeAccounts) RecordProcessedFailure(_ context.Context, id uuid.UUID, threshold int) (models.FailureTally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return models.FailureTally{}, accountdomain.ErrAccountNotFound
	}
	was := a.IsBlocked
	a.FailedOrdersCount++
	a.IsBlocked = a.IsBlocked || a.FailedOrdersCount >= threshold
	return models.FailureTally{AccountID: id, Count: a.FailedOrdersCount, Blocked: a.IsBlocked, NewlyBlocked: a.IsBlocked && !was}, nil
}

func (f *fakeAccounts) BlockOverThreshold(_ context.Context, scope auth.Scope, threshold int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, a := range f.byID {
		if !a.IsBlocked && a.FailedOrdersCount >= threshold && scope.Allows(a.CompanyID, a.ID) {
			a.IsBlocked = true
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (f *fakeAccounts) ResetFailures(_ context.Context, scope auth.Scope, ids []uuid.UUID) (int64, error) {
	return f.update(scope, ids, func(a *models.Account) bool {
		if a.FailedOrdersCount == 0 {
			return false
		}
		a.FailedOrdersCount = 0
		return true
	}), nil
}

func (f *fakeAccounts) Unblock(_ context.Context, scope auth.Scope, ids []uuid.UUID) (int64, error) {
	return f.update(scope, ids, func(a *models.Account) bool {
		if !a.IsBlocked {
			return false
		}
		a.IsBlocked = false
		return true
	}), nil
}

func (f *fakeAccounts) update(scope auth.Scope, ids []uuid.UUID, fn func(*models.Account) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := f.byID[id]
		if !ok || !scope.Allows(a.CompanyID, a.ID) {
			continue
		}
		if fn(a) {
			n++
		}
	}
	return n
}

type fakeCompanies struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Company
}

func newFakeCompanies(companies ...*models.Company) *fakeCompanies {
	f := &fakeCompanies{byID: map[uuid.UUID]*models.Company{}}
	for _, c := range companies {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCompanies) Save(_ context.Context, c *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Domain == c.Domain {
			return accountdomain.ErrCompanyAlreadyExists
		}
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCompanies) GetByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, accountdomain.ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeCompanies) GetOrCreate(_ context.Context, name, domain string) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Name == name && c.Domain == domain {
			return c, nil
		}
	}
	c := models.NewCompany(name, domain)
	f.byID[c.ID] = c
	return c, nil
}

type inlineTx struct{ calls int }

func (t *inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
