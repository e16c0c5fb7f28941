// Package workflows runs the periodic maintenance of the order desk on
// Temporal: a cron workflow that reclaims stuck orders and reconciles
// account blocks.
package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/logger"
)

// Maintenance activities touch the database in bulk; two at a time is plenty.
const maxConcurrentActivities = 2

// TemporalClient is a Temporal connection for one namespace.
type TemporalClient struct {
	client    client.Client
	taskQueue string
	log       logger.Logger
}

// NewTemporalClient dials cfg.TemporalHostPort with tracing enabled.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("orderdesk/temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     cfg.ServiceName,
		Logger:       temporallog.NewStructuredLogger(log.With("component", "temporal").ToSlog()),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s: %w", cfg.TemporalHostPort, err)
	}
	log.InfoContext(ctx, "temporal connected", "host_port", cfg.TemporalHostPort, "namespace", cfg.TemporalNamespace)

	return &TemporalClient{client: c, taskQueue: cfg.TemporalTaskQueue, log: log}, nil
}

// StartMaintenance starts a worker for the maintenance workflow and makes
// sure its cron run exists. Every worker process calls it; the fixed
// workflow id keeps a single cron run. The returned func stops the worker.
func (tc *TemporalClient) StartMaintenance(ctx context.Context, cron string, acts *Activities) (stop func(), err error) {
	w := worker.New(tc.client, tc.taskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: maxConcurrentActivities,
	})
	w.RegisterWorkflow(MaintenanceWorkflow)
	w.RegisterActivity(acts)
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("start temporal worker: %w", err)
	}

	run, err := tc.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           MaintenanceWorkflowID,
		TaskQueue:    tc.taskQueue,
		CronSchedule: cron,
	}, MaintenanceWorkflow)
	if err != nil {
		w.Stop()
		return nil, fmt.Errorf("schedule maintenance: %w", err)
	}
	tc.log.InfoContext(ctx, "maintenance scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cron)
	return w.Stop, nil
}

func (tc *TemporalClient) Close() {
	tc.client.Close()
}
