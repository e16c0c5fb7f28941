package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/services/inventory/infrastructure/persistence/postgres/db"
)

// StockLedger implements repositories.StockLedger. The decrement is a single
// conditional UPDATE, so concurrent orders against one product can never
// jointly overdraw it: PostgreSQL re-checks the guard on the latest row
// version after a competing update commits.
type StockLedger struct {
	db *database.Database
}

// NewStockLedger returns a StockLedger backed by the given pool.
func NewStockLedger(database *database.Database) *StockLedger {
	return &StockLedger{db: database}
}

// Decrement joins the transaction carried by ctx, so a rolled back terminal
// write also rolls back the stock change.
func (l *StockLedger) Decrement(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("decrement stock: quantity must be positive, got %d", quantity)
	}
	q := db.New(l.db.Conn(ctx))
	n, err := q.DecrementStock(ctx, db.DecrementStockParams{
		Quantity: int32(quantity),
		ID:       productID,
	})
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return n == 1, nil
}
