package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/database"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
	"github.com/ghuser/orderdesk/services/order/domain/models"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
	"github.com/ghuser/orderdesk/services/order/infrastructure/persistence/postgres/db"
)

// OrderRepository implements repositories.OrderRepository against PostgreSQL.
// Status changes are single conditional UPDATEs; the WHERE clause is the
// state machine guard and RETURNING reports whether it held.
type OrderRepository struct {
	db *database.Database
}

// NewOrderRepository returns an OrderRepository backed by the given pool.
func NewOrderRepository(database *database.Database) *OrderRepository {
	return &OrderRepository{db: database}
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	q := db.New(r.db.Conn(ctx))
	if err := q.InsertOrder(ctx, db.InsertOrderParams{
		ID:               o.ID,
		ReferenceCode:    o.ReferenceCode,
		CompanyID:        o.CompanyID,
		ProductID:        o.ProductID,
		CreatedBy:        o.CreatedBy,
		Quantity:         int32(o.Quantity),
		Status:           string(o.Status),
		HasBeenProcessed: o.HasBeenProcessed,
		Attempts:         int32(o.Attempts),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return fmt.Errorf("%w: %s", orderdomain.ErrInvalidOrder, pgErr.ConstraintName)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Get returns ErrOrderNotFound when the order is missing or outside scope.
func (r *OrderRepository) Get(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.Order, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.GetOrder(ctx, db.GetOrderParams{
		ID:        id,
		CompanyID: scope.CompanyID,
		CreatedBy: scope.CreatedBy,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	return rowToOrder(row), nil
}

// List returns a page of orders, newest first, and the total matching count.
func (r *OrderRepository) List(ctx context.Context, scope auth.Scope, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	q := db.New(r.db.Conn(ctx))
	status := sql.NullString{String: string(opts.Status), Valid: opts.Status != ""}

	rows, err := q.ListOrders(ctx, db.ListOrdersParams{
		CompanyID: scope.CompanyID,
		CreatedBy: scope.CreatedBy,
		Status:    status,
		Lim:       int32(opts.Limit),
		Off:       int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}

	total, err := q.CountOrders(ctx, db.CountOrdersParams{
		CompanyID: scope.CompanyID,
		CreatedBy: scope.CreatedBy,
		Status:    status,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return rowsToOrders(rows), int(total), nil
}

// ListByIDs returns the orders among ids that fall inside scope, oldest first.
// Unknown and out of scope ids are silently dropped.
func (r *OrderRepository) ListByIDs(ctx context.Context, scope auth.Scope, ids []uuid.UUID) ([]*models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := db.New(r.db.Conn(ctx))
	rows, err := q.ListOrdersByIDs(ctx, db.ListOrdersByIDsParams{
		Ids:       ids,
		CompanyID: scope.CompanyID,
		CreatedBy: scope.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("query orders by id: %w", err)
	}
	return rowsToOrders(rows), nil
}

// Claim implements repositories.OrderRepository.
func (r *OrderRepository) Claim(ctx context.Context, id uuid.UUID, attempt int) (*models.Order, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.ClaimOrder(ctx, db.ClaimOrderParams{ID: id, Attempts: int32(attempt)})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotClaimable
		}
		return nil, fmt.Errorf("claim order: %w", err)
	}
	return rowToOrder(row), nil
}

// Finish implements repositories.OrderRepository.
func (r *OrderRepository) Finish(ctx context.Context, id uuid.UUID, attempt int, status models.Status) (*models.Order, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is not terminal", orderdomain.ErrInvalidTransition, status)
	}
	q := db.New(r.db.Conn(ctx))
	row, err := q.FinishOrder(ctx, db.FinishOrderParams{
		Status:   string(status),
		ID:       id,
		Attempts: int32(attempt),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrStaleClaim
		}
		return nil, fmt.Errorf("finish order: %w", err)
	}
	return rowToOrder(row), nil
}

// ReclaimStuck implements repositories.OrderRepository.
func (r *OrderRepository) ReclaimStuck(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	q := db.New(r.db.Conn(ctx))
	rows, err := q.ReclaimStuckOrders(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("reclaim stuck orders: %w", err)
	}
	return rowsToOrders(rows), nil
}

// SetStatus implements repositories.OrderRepository.
func (r *OrderRepository) SetStatus(ctx context.Context, scope auth.Scope, id uuid.UUID, from, to models.Status) (*models.Order, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.SetOrderStatus(ctx, db.SetOrderStatusParams{
		Status:     string(to),
		ID:         id,
		FromStatus: string(from),
		CompanyID:  scope.CompanyID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order is no longer %s", orderdomain.ErrInvalidTransition, from)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return nil, fmt.Errorf("%w: %s", orderdomain.ErrInvalidTransition, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("set order status: %w", err)
	}
	return rowToOrder(row), nil
}

func rowsToOrders(rows []db.Order) []*models.Order {
	orders := make([]*models.Order, len(rows))
	for i, row := range rows {
		orders[i] = rowToOrder(row)
	}
	return orders
}

func rowToOrder(row db.Order) *models.Order {
	return &models.Order{
		ID:               row.ID,
		ReferenceCode:    row.ReferenceCode,
		CompanyID:        row.CompanyID,
		ProductID:        row.ProductID,
		CreatedBy:        row.CreatedBy,
		Quantity:         int(row.Quantity),
		Status:           models.Status(row.Status),
		HasBeenProcessed: row.HasBeenProcessed,
		Attempts:         int(row.Attempts),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
