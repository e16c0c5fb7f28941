package telemetry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/orderdesk/pkg/config"
)

const redacted = "[redacted]"

// Request headers that carry API tokens or the console session.
var sensitiveHeaders = []string{"Authorization", "Cookie", "Set-Cookie"}

// SetupSentry initialises crash reporting. An empty DSN leaves Sentry off.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: sampleRate(cfg.OtelSampleRate),
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// scrubEvent drops credentials and login bodies before an event leaves the process.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	req := event.Request
	if req == nil {
		return event
	}
	for name := range req.Headers {
		for _, s := range sensitiveHeaders {
			if strings.EqualFold(name, s) {
				req.Headers[name] = redacted
			}
		}
	}
	req.Cookies = ""
	if strings.HasSuffix(req.URL, "/login") || strings.HasSuffix(req.URL, "/token") {
		req.Data = redacted
	}
	return event
}

// SentryFlush waits up to 2s for buffered events.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware reports panics and re-panics so Recovery still writes the 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 2 * time.Second}).Handle
}

// CaptureError reports a worker-side failure that has no request attached.
// It is a no-op until SetupSentry has run with a DSN.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}
