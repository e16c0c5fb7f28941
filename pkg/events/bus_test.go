package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/goleak"

	"github.com/ghuser/orderdesk/pkg/logger"
)

var fastRetry = RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}

func setupTracer(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{name: "first attempt succeeds", failFirst: 0, wantCalls: 1},
		{name: "succeeds on last attempt", failFirst: 2, wantCalls: 3},
		{name: "attempts exhausted", failFirst: 10, wantCalls: 3, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			op := func() error {
				calls++
				if calls <= tc.failFirst {
					return errors.New("transient")
				}
				return nil
			}
			err := retry(context.Background(), fastRetry, op, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if calls != tc.wantCalls {
				t.Errorf("expected %d calls, got %d", tc.wantCalls, calls)
			}
		})
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, RetryPolicy{Attempts: 3, BaseDelay: time.Second}, func() error {
		calls++
		return errors.New("boom")
	}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestStartForwarder_RequiresOutbox(t *testing.T) {
	bus := NewInMemoryEventBus(logger.Nop())
	defer bus.Close() //nolint:errcheck

	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected an error on a bus without outbox")
	}
}

func TestTracePropagation(t *testing.T) {
	setupTracer(t)

	ctx, span := otel.Tracer("test").Start(context.Background(), "enqueue")
	defer span.End()

	msg := message.NewMessage("id", nil)
	injectTrace(ctx, msg)
	if msg.Metadata.Get("traceparent") == "" {
		t.Fatal("traceparent not written to metadata")
	}

	got := trace.SpanFromContext(extractTrace(context.Background(), msg)).SpanContext()
	if !got.IsValid() || got.TraceID() != span.SpanContext().TraceID() {
		t.Fatalf("trace id mismatch: want %s, got %s", span.SpanContext().TraceID(), got.TraceID())
	}
}

func TestInMemoryEventBus_DeliversAndShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	setupTracer(t)

	bus := NewInMemoryEventBus(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type task struct {
		OrderID string `json:"order_id"`
	}
	received := make(chan task, 1)
	traces := make(chan trace.TraceID, 1)
	errCh, err := bus.Subscribe(ctx, "orders.process", func(ctx context.Context, msg *message.Message) error {
		var tk task
		if err := json.Unmarshal(msg.Payload, &tk); err != nil {
			return err
		}
		traces <- trace.SpanFromContext(ctx).SpanContext().TraceID()
		received <- tk
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pubCtx, span := otel.Tracer("test").Start(ctx, "enqueue")
	msg, err := NewJSONMessage(task{OrderID: "42"})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if err := bus.PublishTx(pubCtx, nil, "orders.process", msg); err != nil {
		t.Fatalf("publish: %v", err)
	}
	span.End()

	select {
	case got := <-received:
		if got.OrderID != "42" {
			t.Fatalf("unexpected payload: %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	if got := <-traces; got != span.SpanContext().TraceID() {
		t.Errorf("trace not propagated: want %s, got %s", span.SpanContext().TraceID(), got)
	}

	if err := bus.Ping(ctx); err != nil {
		t.Errorf("in-memory ping: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	for range errCh {
	}
}

func TestSubscribe_ReportsExhaustedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(logger.Nop())
	bus.retry = fastRetry
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 16)
	errCh, err := bus.Subscribe(ctx, "exports.generate", func(context.Context, *message.Message) error {
		calls <- struct{}{}
		return errors.New("storage offline")
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	msg, _ := NewJSONMessage(map[string]string{"export_id": "x"})
	if err := bus.Publish(ctx, "exports.generate", msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected handler error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler error")
	}
	if len(calls) < fastRetry.Attempts {
		t.Errorf("expected at least %d attempts, got %d", fastRetry.Attempts, len(calls))
	}
	cancel()
	_ = bus.Close()
}

func TestNewJSONMessage(t *testing.T) {
	msg, err := NewJSONMessage(map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.UUID == "" {
		t.Error("expected message UUID")
	}
	if string(msg.Payload) != `{"n":1}` {
		t.Errorf("unexpected payload %s", msg.Payload)
	}
	if _, err := NewJSONMessage(make(chan int)); err == nil {
		t.Error("expected error for unencodable payload")
	}
}
