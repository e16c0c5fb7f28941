package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
)

// Order is a request to consume Quantity units of a product.
type Order struct {
	ID               uuid.UUID
	ReferenceCode    uuid.UUID
	CompanyID        uuid.UUID
	ProductID        uuid.UUID
	CreatedBy        uuid.UUID
	Quantity         int
	Status           Status
	HasBeenProcessed bool
	// Attempts counts processing claims. A terminal write only lands for the
	// claim that produced it.
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder returns a pending order. CompanyID is always the product's company.
func NewOrder(product ProductSnapshot, createdBy uuid.UUID, quantity int) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:            uuid.New(),
		ReferenceCode: uuid.New(),
		CompanyID:     product.CompanyID,
		ProductID:     product.ID,
		CreatedBy:     createdBy,
		Quantity:      quantity,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// OwningCompany implements auth.TenantScoped.
func (o *Order) OwningCompany() uuid.UUID { return o.CompanyID }

// Validate checks the fields a new order must carry.
func (o *Order) Validate() error {
	if o.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if o.CompanyID == uuid.Nil || o.ProductID == uuid.Nil || o.CreatedBy == uuid.Nil {
		return errors.New("company, product and creator are required")
	}
	return nil
}

// CanProcess reports whether the order may be handed to the processor for the first time.
func (o *Order) CanProcess() bool {
	return o.Status == StatusPending
}

// CanRetry reports whether the order is a processed failure.
func (o *Order) CanRetry() bool {
	return o.Status == StatusFailed && o.HasBeenProcessed
}

// Claimable reports whether a task published at attempt may claim the
// order. It mirrors the repository's claim predicate.
func (o *Order) Claimable(attempt int) bool {
	return o.Attempts == attempt && (o.CanProcess() || o.CanRetry())
}

// CorrectStatus checks an administrative status change and reports whether
// it must be charged to the creator's failure counter. Only a change that
// lands on failed for an already processed order is charged. Orders that a
// worker holds are left alone, and processing is reserved for the claim.
func (o *Order) CorrectStatus(next Status) (chargesFailure bool, err error) {
	switch {
	case !next.Valid():
		return false, fmt.Errorf("%w: unknown status %q", orderdomain.ErrInvalidTransition, next)
	case o.Status == StatusProcessing:
		return false, fmt.Errorf("%w: order is being processed", orderdomain.ErrInvalidTransition)
	case next == StatusProcessing:
		return false, fmt.Errorf("%w: processing is set by workers only", orderdomain.ErrInvalidTransition)
	case next == StatusPending && o.HasBeenProcessed:
		return false, fmt.Errorf("%w: a processed order cannot return to pending", orderdomain.ErrInvalidTransition)
	case next == o.Status:
		return false, fmt.Errorf("%w: order is already %s", orderdomain.ErrInvalidTransition, next)
	}
	return next == StatusFailed && o.HasBeenProcessed, nil
}
