// Package queue puts export generation tasks on the work queue and turns
// delivered tasks back into generator calls.
package queue

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/pkg/events"
	"github.com/ghuser/orderdesk/pkg/logger"
	exportevents "github.com/ghuser/orderdesk/services/export/domain/events"
)

// Publisher implements the export services' TaskQueue on the event bus.
type Publisher struct {
	bus *events.EventBus
}

// NewPublisher returns a Publisher on bus.
func NewPublisher(bus *events.EventBus) *Publisher {
	return &Publisher{bus: bus}
}

// EnqueueGeneration publishes one task through the outbox when ctx carries a
// transaction, directly otherwise.
func (p *Publisher) EnqueueGeneration(ctx context.Context, exportID uuid.UUID, orderIDs []uuid.UUID) error {
	msg, err := events.NewJSONMessage(exportevents.GenerateExportTask{ExportID: exportID, OrderIDs: orderIDs})
	if err != nil {
		return err
	}
	if tx, ok := database.TxFromContext(ctx); ok {
		return p.bus.PublishTx(ctx, tx, exportevents.TopicGenerateExport, msg)
	}
	return p.bus.Publish(ctx, exportevents.TopicGenerateExport, msg)
}

// ExportGenerator is the worker-side entry point.
type ExportGenerator interface {
	Generate(ctx context.Context, exportID uuid.UUID, orderIDs []uuid.UUID) error
}

// GenerateExportHandler decodes exports.generate messages and runs g.
// Malformed payloads are logged and dropped.
func GenerateExportHandler(g ExportGenerator, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var task exportevents.GenerateExportTask
		if err := json.Unmarshal(msg.Payload, &task); err != nil || task.ExportID == uuid.Nil {
			if err == nil {
				err = errors.New("missing export_id")
			}
			log.ErrorContext(ctx, "dropping malformed task", "topic", exportevents.TopicGenerateExport, "message_id", msg.UUID, "error", err)
			return nil
		}
		return g.Generate(logger.ContextWith(ctx, "export_id", task.ExportID), task.ExportID, task.OrderIDs)
	}
}
