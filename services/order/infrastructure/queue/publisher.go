// Package queue puts order processing tasks on the work queue and turns
// delivered tasks back into processor calls.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/pkg/events"
	"github.com/ghuser/orderdesk/pkg/logger"
	orderevents "github.com/ghuser/orderdesk/services/order/domain/events"
	"github.com/ghuser/orderdesk/services/order/domain/models"
)

// Publisher implements the order services' TaskQueue on the event bus.
type Publisher struct {
	bus *events.EventBus
}

// NewPublisher returns a Publisher on bus.
func NewPublisher(bus *events.EventBus) *Publisher {
	return &Publisher{bus: bus}
}

// EnqueueProcessing publishes one task per order, stamped with the order's
// current attempt count. Inside a transaction opened with database.WithinTx
// the tasks go out through the outbox and only become visible on commit.
func (p *Publisher) EnqueueProcessing(ctx context.Context, orders ...*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	msgs := make([]*message.Message, 0, len(orders))
	for _, o := range orders {
		msg, err := events.NewJSONMessage(orderevents.ProcessOrderTask{OrderID: o.ID, Attempt: o.Attempts})
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if tx, ok := database.TxFromContext(ctx); ok {
		return p.bus.PublishTx(ctx, tx, orderevents.TopicProcessOrder, msgs...)
	}
	return p.bus.Publish(ctx, orderevents.TopicProcessOrder, msgs...)
}

// OrderProcessor is the worker-side entry point.
type OrderProcessor interface {
	Process(ctx context.Context, orderID uuid.UUID, attempt int) error
}

// ProcessOrderHandler decodes orders.process messages and runs p. A payload
// that cannot be decoded is dropped: redelivering it would fail the same way.
func ProcessOrderHandler(p OrderProcessor, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		task, err := DecodeProcessOrder(msg)
		if err != nil {
			log.ErrorContext(ctx, "dropping malformed task", "message_id", msg.UUID, "error", err)
			return nil
		}
		return p.Process(logger.ContextWith(ctx, "order_id", task.OrderID), task.OrderID, task.Attempt)
	}
}

// DecodeProcessOrder parses an orders.process payload.
func DecodeProcessOrder(msg *message.Message) (orderevents.ProcessOrderTask, error) {
	var task orderevents.ProcessOrderTask
	if err := json.Unmarshal(msg.Payload, &task); err != nil {
		return task, fmt.Errorf("decode %s payload: %w", orderevents.TopicProcessOrder, err)
	}
	if task.OrderID == uuid.Nil {
		return task, fmt.Errorf("decode %s payload: missing order_id", orderevents.TopicProcessOrder)
	}
	if task.Attempt < 0 {
		return task, fmt.Errorf("decode %s payload: negative attempt %d", orderevents.TopicProcessOrder, task.Attempt)
	}
	return task, nil
}
