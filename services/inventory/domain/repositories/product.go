package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/services/inventory/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// ProductRepository is the persistence interface for the Product aggregate.
// Reads honour the company filter of scope.
type ProductRepository interface {
	Save(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.Product, error)

	// List returns a page of products and the total count ignoring pagination.
	List(ctx context.Context, scope auth.Scope, opts QueryOpts) ([]*models.Product, int, error)

	// AdjustStock adds delta to the stock in one guarded statement. Returns
	// ErrNegativeStock when the result would drop below zero.
	AdjustStock(ctx context.Context, scope auth.Scope, id uuid.UUID, delta int) (*models.Product, error)
}

// StockLedger is the authoritative stock counter used by order processing.
type StockLedger interface {
	// Decrement subtracts quantity only if that much stock is available and
	// reports whether it applied.
	Decrement(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
}
