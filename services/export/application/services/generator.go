package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/telemetry"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	"github.com/ghuser/orderdesk/services/export/domain/models"
	"github.com/ghuser/orderdesk/services/export/domain/repositories"
)

// Generator builds export files on the worker side.
type Generator struct {
	exports repositories.ExportRepository
	rows    repositories.RowSource
	store   FileStore
	metrics *telemetry.Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(exports repositories.ExportRepository, rows repositories.RowSource, store FileStore, metrics *telemetry.Metrics, log logger.Logger) *Generator {
	return &Generator{
		exports: exports,
		rows:    rows,
		store:   store,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Generate writes the CSV for exportID over orderIDs and records the outcome
// on the export. A ready export is left untouched so a redelivered task
// cannot replace its file. Generation failures end in status failed with the
// error as note; only a failure to record the outcome is returned, which
// makes the queue redeliver.
func (g *Generator) Generate(ctx context.Context, exportID uuid.UUID, orderIDs []uuid.UUID) error {
	log := g.log.With("export_id", exportID)

	e, err := g.exports.Get(ctx, auth.Scope{}, exportID)
	if errors.Is(err, exportdomain.ErrExportNotFound) {
		log.WarnContext(ctx, "export vanished before generation")
		return nil
	}
	if err != nil {
		return err
	}
	if e.Status == models.StatusReady {
		log.InfoContext(ctx, "export already ready", "file_name", e.FileName)
		return nil
	}

	if err := g.exports.MarkPending(ctx, e.ID); err != nil {
		return err
	}

	name, genErr := g.build(ctx, e, orderIDs)
	if genErr == nil {
		genErr = g.exports.MarkReady(ctx, e.ID, name)
	}
	if genErr != nil {
		if err := g.exports.MarkFailed(ctx, e.ID, genErr.Error()); err != nil {
			return fmt.Errorf("record export failure %q: %w", genErr, err)
		}
		log.ErrorContext(ctx, "export failed", "error", genErr)
		g.metrics.ExportGenerated(ctx, string(models.StatusFailed))
		return nil
	}

	log.InfoContext(ctx, "export ready", "file_name", name, "orders", len(orderIDs))
	g.metrics.ExportGenerated(ctx, string(models.StatusReady))
	return nil
}

func (g *Generator) build(ctx context.Context, e *models.Export, orderIDs []uuid.UUID) (string, error) {
	scope := auth.Scope{
		CompanyID: uuid.NullUUID{UUID: e.CompanyID, Valid: true},
		CreatedBy: e.OrdersCreatedBy,
	}
	rows, err := g.rows.Rows(ctx, scope, orderIDs)
	if err != nil {
		return "", fmt.Errorf("read orders: %w", err)
	}
	body, err := EncodeCSV(rows)
	if err != nil {
		return "", err
	}
	name := models.FileNameFor(e.ID, g.now())
	if err := g.store.Save(ctx, name, bytes.NewReader(body), int64(len(body)), csvContentType); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return name, nil
}
