package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ghuser/orderdesk"

// Metrics holds the domain instruments exported on /metrics.
type Metrics struct {
	ordersProcessed    metric.Int64Counter
	processingDuration metric.Float64Histogram
	accountsBlocked    metric.Int64Counter
	exportsGenerated   metric.Int64Counter
	ordersReclaimed    metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.ordersProcessed, err = meter.Int64Counter("orders.processed",
		metric.WithDescription("Orders that reached a terminal status, by status and reason")); err != nil {
		return nil, fmt.Errorf("orders.processed: %w", err)
	}
	if m.processingDuration, err = meter.Float64Histogram("orders.processing.duration",
		metric.WithDescription("Wall time from claim to terminal status"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("orders.processing.duration: %w", err)
	}
	if m.accountsBlocked, err = meter.Int64Counter("accounts.blocked",
		metric.WithDescription("Accounts blocked, by trigger")); err != nil {
		return nil, fmt.Errorf("accounts.blocked: %w", err)
	}
	if m.exportsGenerated, err = meter.Int64Counter("exports.generated",
		metric.WithDescription("Export jobs finished, by status")); err != nil {
		return nil, fmt.Errorf("exports.generated: %w", err)
	}
	if m.ordersReclaimed, err = meter.Int64Counter("orders.reclaimed",
		metric.WithDescription("Orders failed by the stuck-order sweep")); err != nil {
		return nil, fmt.Errorf("orders.reclaimed: %w", err)
	}
	return &m, nil
}

// OrderProcessed records a terminal order outcome. A nil receiver is a no-op
// so services built without telemetry still work.
func (m *Metrics) OrderProcessed(ctx context.Context, status, reason string, took time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status), attribute.String("reason", reason))
	m.ordersProcessed.Add(ctx, 1, attrs)
	m.processingDuration.Record(ctx, took.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// AccountsBlocked records n accounts blocked by trigger ("threshold" or "bulk").
func (m *Metrics) AccountsBlocked(ctx context.Context, trigger string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.accountsBlocked.Add(ctx, n, metric.WithAttributes(attribute.String("trigger", trigger)))
}

// ExportGenerated records an export job outcome.
func (m *Metrics) ExportGenerated(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.exportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// OrdersReclaimed records orders failed by the sweep.
func (m *Metrics) OrdersReclaimed(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.ordersReclaimed.Add(ctx, n)
}
