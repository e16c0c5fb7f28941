package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	"github.com/ghuser/orderdesk/services/export/domain/models"
)

// fakeExports keeps exports and order rows in memory.
type fakeExports struct {
	mu      sync.Mutex
	exports map[uuid.UUID]*models.Export
	rows    map[uuid.UUID]rowFixture
	rowsErr error
}

type rowFixture struct {
	companyID uuid.UUID
	createdBy uuid.UUID
	seq       int
	row       models.Row
}

func newFakeExports() *fakeExports {
	return &fakeExports{exports: map[uuid.UUID]*models.Export{}, rows: map[uuid.UUID]rowFixture{}}
}

func (f *fakeExports) addOrder(companyID uuid.UUID, row models.Row) uuid.UUID {
	return f.addOrderBy(companyID, uuid.New(), row)
}

func (f *fakeExports) addOrderBy(companyID, createdBy uuid.UUID, row models.Row) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.rows[id] = rowFixture{companyID: companyID, createdBy: createdBy, seq: len(f.rows), row: row}
	return id
}

func (f *fakeExports) Create(_ context.Context, e *models.Export) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.exports[e.ID] = &cp
	return nil
}

func (f *fakeExports) Get(_ context.Context, scope auth.Scope, id uuid.UUID) (*models.Export, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exports[id]
	if !ok || (scope.CompanyID.Valid && scope.CompanyID.UUID != e.CompanyID) {
		return nil, exportdomain.ErrExportNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExports) update(id uuid.UUID, fn func(*models.Export)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exports[id]
	if !ok {
		return exportdomain.ErrExportNotFound
	}
	fn(e)
	return nil
}

func (f *fakeExports) MarkPending(_ context.Context, id uuid.UUID) error {
	return f.update(id, func(e *models.Export) { e.Status, e.Note = models.StatusPending, "" })
}

func (f *fakeExports) MarkReady(_ context.Context, id uuid.UUID, fileName string) error {
	return f.update(id, func(e *models.Export) { e.Status, e.FileName, e.Note = models.StatusReady, fileName, "" })
}

func (f *fakeExports) MarkFailed(_ context.Context, id uuid.UUID, note string) error {
	return f.update(id, func(e *models.Export) { e.Status, e.Note = models.StatusFailed, note })
}

// Rows returns matching rows in insertion order, standing in for the
// created_at, id ordering of the SQL query.
func (f *fakeExports) Rows(_ context.Context, scope auth.Scope, orderIDs []uuid.UUID) ([]models.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	picked := make([]rowFixture, 0, len(orderIDs))
	for _, id := range orderIDs {
		if fx, ok := f.rows[id]; ok && scope.CompanyID.Valid && scope.Allows(fx.companyID, fx.createdBy) {
			picked = append(picked, fx)
		}
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].seq < picked[j].seq })
	out := make([]models.Row, len(picked))
	for i, fx := range picked {
		out[i] = fx.row
	}
	return out, nil
}

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type fakeQueue struct {
	err   error
	tasks map[uuid.UUID][]uuid.UUID
}

func (q *fakeQueue) EnqueueGeneration(_ context.Context, exportID uuid.UUID, orderIDs []uuid.UUID) error {
	if q.err != nil {
		return q.err
	}
	if q.tasks == nil {
		q.tasks = map[uuid.UUID][]uuid.UUID{}
	}
	q.tasks[exportID] = orderIDs
	return nil
}

var errDiskFull = errors.New("disk full")
