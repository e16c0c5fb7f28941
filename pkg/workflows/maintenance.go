package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/orderdesk/pkg/logger"
)

// MaintenanceWorkflowID keeps a single cron run per namespace.
const MaintenanceWorkflowID = "orderdesk-maintenance"

// OrderSweeper fails orders stuck in processing.
type OrderSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// BlockReconciler blocks every account whose failure counter reached the threshold.
type BlockReconciler interface {
	ReconcileBlocks(ctx context.Context) (int64, error)
}

// Activities are the maintenance steps run by MaintenanceWorkflow.
type Activities struct {
	Sweeper    OrderSweeper
	Reconciler BlockReconciler
	Log        logger.Logger
}

// SweepStuckOrders is an activity; it returns the number of orders reclaimed.
func (a *Activities) SweepStuckOrders(ctx context.Context) (int64, error) {
	n, err := a.Sweeper.Sweep(ctx)
	if err != nil {
		a.Log.ErrorContext(ctx, "stuck order sweep failed", "error", err)
		return 0, err
	}
	return n, nil
}

// ReconcileBlockedAccounts is an activity; it returns the number of accounts blocked.
func (a *Activities) ReconcileBlockedAccounts(ctx context.Context) (int64, error) {
	n, err := a.Reconciler.ReconcileBlocks(ctx)
	if err != nil {
		a.Log.ErrorContext(ctx, "block reconciliation failed", "error", err)
		return 0, err
	}
	return n, nil
}

// MaintenanceResult summarises one maintenance run.
type MaintenanceResult struct {
	OrdersReclaimed int64 `json:"orders_reclaimed"`
	AccountsBlocked int64 `json:"accounts_blocked"`
}

// MaintenanceWorkflow sweeps stuck orders, then blocks accounts over the
// failure threshold. Both steps are idempotent so cron overlap is harmless.
func MaintenanceWorkflow(ctx workflow.Context) (MaintenanceResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	})

	var (
		a   *Activities
		res MaintenanceResult
	)
	if err := workflow.ExecuteActivity(ctx, a.SweepStuckOrders).Get(ctx, &res.OrdersReclaimed); err != nil {
		return res, err
	}
	if err := workflow.ExecuteActivity(ctx, a.ReconcileBlockedAccounts).Get(ctx, &res.AccountsBlocked); err != nil {
		return res, err
	}

	workflow.GetLogger(ctx).Info("maintenance finished",
		"orders_reclaimed", res.OrdersReclaimed,
		"accounts_blocked", res.AccountsBlocked)
	return res, nil
}
