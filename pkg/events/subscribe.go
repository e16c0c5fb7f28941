package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"
)

// Handler processes one task. A nil return acks the message.
type Handler func(ctx context.Context, msg *message.Message) error

// RetryPolicy bounds how often a handler is retried in-process before the
// message is nacked for redelivery.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy tries a handler three times, waiting about 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// Subscribe consumes topic until ctx is cancelled or the bus is closed. Each
// message gets a context carrying the publisher's trace. A handler that still
// fails after the retry policy is exhausted has its message nacked and the
// error is sent on the returned channel, which the caller must drain.
func (b *EventBus) Subscribe(ctx context.Context, topic string, h Handler) (<-chan error, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", topic, err)
	}

	errCh := make(chan error, 100)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(errCh)

		for msg := range msgs {
			msgCtx := extractTrace(ctx, msg)
			if err := b.handle(msgCtx, topic, msg, h); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					b.log.ErrorContext(msgCtx, "events: error channel full", "topic", topic, "error", err)
				}
				continue
			}
			msg.Ack()
		}
	}()
	return errCh, nil
}

func (b *EventBus) handle(ctx context.Context, topic string, msg *message.Message, h Handler) error {
	return retry(ctx, b.retry, func() error { return h(ctx, msg) }, func(err error, next time.Duration) {
		b.log.WarnContext(ctx, "events: handler failed, retrying",
			"topic", topic,
			"message_uuid", msg.UUID,
			"next_attempt_in", next,
			"error", err,
		)
	})
}

// retry runs op until it succeeds, the policy's attempts are spent or ctx is
// done.
func retry(ctx context.Context, p RetryPolicy, op func() error, notify backoff.Notify) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0

	attempts := max(p.Attempts, 1)
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
	}
	return nil
}
