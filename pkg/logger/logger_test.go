package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func setupTracer(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("parse log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestContextHandler_TraceFields(t *testing.T) {
	setupTracer(t)
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	log.InfoContext(context.Background(), "no span")
	if _, ok := lastEntry(t, &buf)["trace_id"]; ok {
		t.Error("trace_id must be absent without a span")
	}

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	log.InfoContext(ctx, "parent")
	parentEntry := lastEntry(t, &buf)

	ctx, child := otel.Tracer("test").Start(ctx, "child")
	log.ErrorContext(ctx, "child", "order_id", "123")
	childEntry := lastEntry(t, &buf)
	child.End()
	parent.End()

	if parentEntry["trace_id"] == nil || parentEntry["trace_id"] != childEntry["trace_id"] {
		t.Errorf("expected a shared trace_id, got %v and %v", parentEntry["trace_id"], childEntry["trace_id"])
	}
	if parentEntry["span_id"] == childEntry["span_id"] {
		t.Error("expected different span ids")
	}
	if childEntry["order_id"] != "123" {
		t.Errorf("expected order_id=123, got %v", childEntry["order_id"])
	}
}

func TestContextWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	ctx := ContextWith(context.Background(), "company_id", "c-1")
	ctx = ContextWith(ctx, "account_id", "a-1")
	log.WarnContext(ctx, "blocked", "failed_orders", 3)

	entry := lastEntry(t, &buf)
	for k, want := range map[string]any{"company_id": "c-1", "account_id": "a-1", "failed_orders": float64(3)} {
		if entry[k] != want {
			t.Errorf("%s: got %v, want %v", k, entry[k], want)
		}
	}

	log.Info("without context")
	if _, ok := lastEntry(t, &buf)["company_id"]; ok {
		t.Error("context attributes leaked into a plain record")
	}
}

func TestMiddleware_RequestIDAndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusConflict, "WARN"},
		{http.StatusServiceUnavailable, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		r := chi.NewRouter()
		r.Use(middleware.RequestID, Middleware(NewWithWriter(&buf, "debug")))
		r.Get("/orders", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte("abc"))
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", http.NoBody))

		entry := lastEntry(t, &buf)
		if entry["level"] != tt.level {
			t.Errorf("status %d: expected level %s, got %v", tt.status, tt.level, entry["level"])
		}
		if entry["bytes"] != float64(3) || entry["method"] != "GET" {
			t.Errorf("status %d: unexpected entry %v", tt.status, entry)
		}
		if _, ok := entry["request_id"]; !ok {
			t.Errorf("status %d: expected request_id", tt.status)
		}
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(NewWithWriter(&buf, "info"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil stock ledger")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Errorf("expected a JSON body, got %q", rr.Header().Get("Content-Type"))
	}
	entry := lastEntry(t, &buf)
	if entry["panic"] != "nil stock ledger" || entry["stack"] == nil {
		t.Errorf("unexpected panic log %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{"debug": "DEBUG", "WARN": "WARN", "error": "ERROR", " info ": "INFO", "bogus": "INFO", "": "INFO"}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
