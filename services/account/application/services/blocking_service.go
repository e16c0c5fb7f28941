package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/telemetry"
	"github.com/ghuser/orderdesk/services/account/domain/models"
	"github.com/ghuser/orderdesk/services/account/domain/repositories"
)

// BlockingService applies the account blocking policy: three processed
// order failures block the account until an administrator unblocks it.
type BlockingService struct {
	accounts repositories.AccountRepository
	metrics  *telemetry.Metrics
	log      logger.Logger
}

// NewBlockingService returns a BlockingService. metrics may be nil.
func NewBlockingService(accounts repositories.AccountRepository, metrics *telemetry.Metrics, log logger.Logger) *BlockingService {
	return &BlockingService{accounts: accounts, metrics: metrics, log: log}
}

// RecordProcessedFailure charges one processed failure to the account and
// reports whether this failure blocked it. It joins the transaction in ctx.
func (s *BlockingService) RecordProcessedFailure(ctx context.Context, accountID uuid.UUID) (bool, error) {
	tally, err := s.accounts.RecordProcessedFailure(ctx, accountID, models.BlockThreshold)
	if err != nil {
		return false, fmt.Errorf("record processed failure: %w", err)
	}
	if tally.NewlyBlocked {
		s.log.WarnContext(ctx, "account blocked after failed orders",
			"account_id", accountID,
			"failed_orders_count", tally.Count,
		)
		s.metrics.AccountsBlocked(ctx, "processed_failure", 1)
	}
	return tally.NewlyBlocked, nil
}

// BlockOverThreshold is the bulk reconciliation an admin runs for their company.
func (s *BlockingService) BlockOverThreshold(ctx context.Context, id auth.Identity) ([]uuid.UUID, error) {
	if err := id.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}
	blocked, err := s.accounts.BlockOverThreshold(ctx, id.Scope(), models.BlockThreshold)
	if err != nil {
		return nil, err
	}
	if len(blocked) > 0 {
		s.log.InfoContext(ctx, "accounts blocked by reconciliation", "count", len(blocked), "by", id.AccountID)
		s.metrics.AccountsBlocked(ctx, "admin_reconcile", int64(len(blocked)))
	}
	return blocked, nil
}

// ReconcileBlocks runs the reconciliation across all companies. Called by the
// scheduled maintenance workflow.
func (s *BlockingService) ReconcileBlocks(ctx context.Context) (int64, error) {
	blocked, err := s.accounts.BlockOverThreshold(ctx, auth.Scope{}, models.BlockThreshold)
	if err != nil {
		return 0, err
	}
	n := int64(len(blocked))
	if n > 0 {
		s.metrics.AccountsBlocked(ctx, "scheduled_reconcile", n)
	}
	return n, nil
}

// ResetFailures zeroes the failure counters of ids within the admin's company.
func (s *BlockingService) ResetFailures(ctx context.Context, id auth.Identity, ids []uuid.UUID) (int64, error) {
	if err := id.Require(auth.RoleAdmin); err != nil {
		return 0, err
	}
	n, err := s.accounts.ResetFailures(ctx, id.Scope(), ids)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "failure counters reset", "requested", len(ids), "updated", n, "by", id.AccountID)
	return n, nil
}

// Unblock clears the blocked flag of ids within the admin's company. The
// failure counter is left as is.
func (s *BlockingService) Unblock(ctx context.Context, id auth.Identity, ids []uuid.UUID) (int64, error) {
	if err := id.Require(auth.RoleAdmin); err != nil {
		return 0, err
	}
	n, err := s.accounts.Unblock(ctx, id.Scope(), ids)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "accounts unblocked", "requested", len(ids), "updated", n, "by", id.AccountID)
	return n, nil
}
