package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/telemetry"
	orderdomain "github.com/ghuser/orderdesk/services/order/domain"
	"github.com/ghuser/orderdesk/services/order/domain/models"
	"github.com/ghuser/orderdesk/services/order/domain/repositories"
)

// Outcome reasons recorded in logs and the orders.processed metric.
const (
	ReasonApproved          = "approved"
	ReasonRejected          = "rejected"
	ReasonInsufficientStock = "insufficient_stock"
)

// ProcessorDeps are the collaborators of a Processor. Cache and Metrics may be nil.
type ProcessorDeps struct {
	Orders   repositories.OrderRepository
	Ledger   StockLedger
	Policy   FailurePolicy
	Tx       Transactor
	Approver Approver
	Cache    StatusCache
	Metrics  *telemetry.Metrics
	Log      logger.Logger
}

// Processor runs one order through approval and stock reconciliation.
type Processor struct {
	ProcessorDeps
	now func() time.Time
}

// NewProcessor returns a Processor.
func NewProcessor(deps ProcessorDeps) *Processor {
	return &Processor{ProcessorDeps: deps, now: time.Now}
}

type settlement struct {
	order   *models.Order
	reason  string
	blocked bool
}

// Process claims the order, asks the approver, then settles it in one
// transaction: the stock decrement, the terminal write and the failure charge
// commit together or not at all.
//
// attempt is the claim count the task was published with. A task whose
// attempt is behind the order's is a duplicate and is skipped.
//
// Only a failed claim is returned as an error, so the task is redelivered.
// Once the order is claimed every problem is logged and the order is left in
// processing for the sweeper; redelivery could not claim it anyway.
func (p *Processor) Process(ctx context.Context, orderID uuid.UUID, attempt int) error {
	log := p.Log.With("order_id", orderID)

	order, err := p.Orders.Claim(ctx, orderID, attempt)
	if errors.Is(err, orderdomain.ErrOrderNotClaimable) {
		log.InfoContext(ctx, "order not claimable, skipping delivery", "task_attempt", attempt)
		return nil
	}
	if err != nil {
		return fmt.Errorf("claim order %s: %w", orderID, err)
	}
	started := p.now()
	log = log.With("attempt", order.Attempts)
	writeStatus(ctx, p.Cache, log, order)

	approved, err := p.Approver.Approve(ctx, order)
	if err != nil {
		log.ErrorContext(ctx, "approval check failed, order left in processing", "error", err)
		return nil
	}

	s, err := p.settle(ctx, order, approved)
	switch {
	case errors.Is(err, orderdomain.ErrStaleClaim):
		log.WarnContext(ctx, "claim superseded, outcome discarded",
			"approved", approved,
			"reason", s.reason,
			"created_by", order.CreatedBy,
		)
		return nil
	case err != nil:
		log.ErrorContext(ctx, "settling order failed, order left in processing", "error", err)
		return nil
	}

	log.InfoContext(ctx, "order processed",
		"status", s.order.Status,
		"reason", s.reason,
		"created_by", s.order.CreatedBy,
		"account_blocked", s.blocked,
	)
	writeStatus(ctx, p.Cache, log, s.order)
	p.Metrics.OrderProcessed(ctx, string(s.order.Status), s.reason, p.now().Sub(started))
	return nil
}

func (p *Processor) settle(ctx context.Context, order *models.Order, approved bool) (settlement, error) {
	var s settlement
	err := p.Tx.WithinTx(ctx, func(ctx context.Context) error {
		status, reason := models.StatusFailed, ReasonRejected
		if approved {
			ok, err := p.Ledger.Decrement(ctx, order.ProductID, order.Quantity)
			if err != nil {
				return err
			}
			if ok {
				status, reason = models.StatusApproved, ReasonApproved
			} else {
				reason = ReasonInsufficientStock
			}
		}

		s.reason = reason
		finished, err := p.Orders.Finish(ctx, order.ID, order.Attempts, status)
		if err != nil {
			return err
		}
		s.order = finished

		if status == models.StatusFailed {
			blocked, err := p.Policy.RecordProcessedFailure(ctx, order.CreatedBy)
			if err != nil {
				return err
			}
			s.blocked = blocked
		}
		return nil
	})
	return s, err
}
