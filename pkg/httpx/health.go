package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const probeTimeout = 2 * time.Second

// HealthChecker is anything that can answer a ping: the database, Redis, the
// event bus, export storage, the worker heartbeat.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks lists the dependencies probed by HealthHandler. Database,
// Redis and EventBus are required to serve requests; when one fails the
// endpoint answers 503. Storage and Workers only degrade the report: orders
// can still be taken while exports or processing are stalled. Nil checks are
// reported as "disabled".
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
	Storage  HealthChecker
	Workers  HealthChecker
}

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status string            `json:"status"` // ok, degraded or unavailable
	Checks map[string]string `json:"checks"`
}

// HealthHandler probes every check concurrently with a shared 2s deadline.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	probes := []struct {
		name     string
		check    HealthChecker
		critical bool
	}{
		{"database", checks.Database, true},
		{"redis", checks.Redis, true},
		{"event_bus", checks.EventBus, true},
		{"storage", checks.Storage, false},
		{"workers", checks.Workers, false},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			report = HealthReport{Status: "ok", Checks: make(map[string]string, len(probes))}
			g      errgroup.Group
		)
		for _, p := range probes {
			if p.check == nil {
				report.Checks[p.name] = "disabled"
				continue
			}
			g.Go(func() error {
				err := p.check.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					report.Checks[p.name] = "ok"
				case p.critical:
					report.Checks[p.name] = "unreachable"
					report.Status = "unavailable"
				default:
					report.Checks[p.name] = "unreachable"
					if report.Status == "ok" {
						report.Status = "degraded"
					}
				}
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		if report.Status == "unavailable" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, report)
	}
}
