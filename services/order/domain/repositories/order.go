package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/services/order/domain/models"
)

// QueryOpts holds pagination and filtering options for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
	// Status filters by status when non-empty.
	Status models.Status
}

// OrderRepository defines persistence operations for orders. Every method joins
// the transaction carried by ctx.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, scope auth.Scope, opts QueryOpts) ([]*models.Order, int, error)
	ListByIDs(ctx context.Context, scope auth.Scope, ids []uuid.UUID) ([]*models.Order, error)

	// Claim moves a pending order, or a processed failure, to processing and
	// bumps Attempts, provided Attempts still equals attempt. Returns
	// ErrOrderNotClaimable when the order is missing, already held, approved
	// or claimed since the task was published.
	Claim(ctx context.Context, id uuid.UUID, attempt int) (*models.Order, error)

	// Finish writes a terminal status for the claim numbered attempt and marks
	// the order processed. Returns ErrStaleClaim when the order was reclaimed
	// or claimed again in the meantime.
	Finish(ctx context.Context, id uuid.UUID, attempt int, status models.Status) (*models.Order, error)

	// ReclaimStuck fails every order held in processing since before cutoff.
	ReclaimStuck(ctx context.Context, cutoff time.Time) ([]*models.Order, error)

	// SetStatus changes status from one value to another. Returns
	// ErrInvalidTransition when the order is no longer in from.
	SetStatus(ctx context.Context, scope auth.Scope, id uuid.UUID, from, to models.Status) (*models.Order, error)
}
