// Package events is the work queue between the API and the workers. Tasks
// such as "process this order" or "generate this export" are Watermill
// messages stored in PostgreSQL and consumed with FOR UPDATE SKIP LOCKED.
//
// The API runs an outbox bus: PublishTx writes a forwarder envelope in the
// same transaction as the order or export row, and the forwarder daemon moves
// committed envelopes to their real topic. Workers run a consumer bus that
// shares one consumer group per service, so each task is handled by exactly
// one worker. Delivery is at least once; handlers must be idempotent.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/logger"
)

const (
	outboxTopic          = "orderdesk_outbox"
	outboxConsumerGroup  = "orderdesk-outbox"
	handlerDrainDeadline = 30 * time.Second
)

// EventBus publishes and consumes task messages.
type EventBus struct {
	db         *sql.DB // nil for the in-memory bus
	publisher  message.Publisher
	subscriber message.Subscriber
	outbox     bool
	fwd        *forwarder.Forwarder
	retry      RetryPolicy
	log        logger.Logger
	wlog       *watermillLogger
	wg         sync.WaitGroup
}

// NewEventBus returns the consumer side used by workers. Publish writes
// straight to the target topic.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return openSQLBus(cfg, log, false)
}

// NewOutboxEventBus returns the producer side used by the API. Messages go
// through the outbox topic; call StartForwarder before publishing.
func NewOutboxEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return openSQLBus(cfg, log, true)
}

// NewInMemoryEventBus returns a bus on Watermill's Go channel pub/sub. Nothing
// is persisted and PublishTx ignores the transaction, so it only serves tests
// and single-process runs.
func NewInMemoryEventBus(log logger.Logger) *EventBus {
	wlog := &watermillLogger{log: log}
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wlog)
	return &EventBus{publisher: ch, subscriber: ch, retry: DefaultRetryPolicy, log: log, wlog: wlog}
}

func openSQLBus(cfg *config.Config, log logger.Logger, outbox bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DefinitionDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	bus := &EventBus{
		db:     db,
		outbox: outbox,
		retry:  DefaultRetryPolicy,
		log:    log,
		wlog:   &watermillLogger{log: log},
	}

	if bus.publisher, err = sqlPublisher(bus, db, true); err != nil {
		_ = db.Close()
		return nil, err
	}
	if bus.subscriber, err = bus.sqlSubscriber(cfg.ServiceName + "-workers"); err != nil {
		_ = bus.publisher.Close()
		_ = db.Close()
		return nil, err
	}
	return bus, nil
}

// sqlPublisher builds a publisher on the pool or on a transaction. On an
// outbox bus the publisher wraps messages in forwarder envelopes.
func sqlPublisher(b *EventBus, db watermillsql.ContextExecutor, initSchema bool) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: initSchema,
	}, b.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	if !b.outbox {
		return pub, nil
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic}), nil
}

func (b *EventBus) sqlSubscriber(group string) (message.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(b.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, b.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", group, err)
	}
	return sub, nil
}

// StartForwarder runs the daemon that moves committed outbox envelopes to
// their target topics. It returns once the daemon is running.
func (b *EventBus) StartForwarder(ctx context.Context) error {
	switch {
	case !b.outbox:
		return errors.New("events: forwarder needs an outbox bus")
	case b.fwd != nil:
		return errors.New("events: forwarder already started")
	}

	sub, err := b.sqlSubscriber(outboxConsumerGroup)
	if err != nil {
		return err
	}
	// The forwarder itself publishes to the real topic, never back into the outbox.
	target, err := watermillsql.NewPublisher(b.db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, b.wlog)
	if err != nil {
		_ = sub.Close()
		return fmt.Errorf("events: new forwarder publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(sub, target, b.wlog, forwarder.Config{ForwarderTopic: outboxTopic})
	if err != nil {
		_ = target.Close()
		_ = sub.Close()
		return fmt.Errorf("events: new forwarder: %w", err)
	}
	b.fwd = fwd

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			b.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
		}
	}()

	select {
	case <-fwd.Running():
		b.log.InfoContext(ctx, "events: forwarder running", "topic", outboxTopic)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// Publish sends msgs to topic outside any transaction.
func (b *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	return publish(ctx, b.publisher, topic, msgs)
}

// PublishTx sends msgs as part of tx: they become visible only when tx
// commits. The in-memory bus publishes immediately.
func (b *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	if b.db == nil || tx == nil {
		return b.Publish(ctx, topic, msgs...)
	}
	// Tables exist once the bus is open, so the tx publisher skips schema setup.
	pub, err := sqlPublisher(b, tx, false)
	if err != nil {
		return err
	}
	return publish(ctx, pub, topic, msgs)
}

func publish(ctx context.Context, pub message.Publisher, topic string, msgs []*message.Message) error {
	for _, msg := range msgs {
		injectTrace(ctx, msg)
	}
	if err := pub.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish %s: %w", topic, err)
	}
	return nil
}

// Ping implements httpx.HealthChecker.
func (b *EventBus) Ping(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping: %w", err)
	}
	return nil
}

// Close stops consuming, waits for in-flight handlers and releases the
// connection. Handlers still running after 30s are abandoned; their messages
// are redelivered.
func (b *EventBus) Close() error {
	errs := []error{b.subscriber.Close()}
	if b.fwd != nil {
		errs = append(errs, b.fwd.Close())
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(handlerDrainDeadline):
		b.log.Error("events: in-flight handlers did not finish before shutdown")
	}

	errs = append(errs, b.publisher.Close())
	if b.db != nil {
		errs = append(errs, b.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("events: close: %w", err)
	}
	return nil
}
