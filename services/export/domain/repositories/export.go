package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/services/export/domain/models"
)

// ExportRepository is the persistence interface for the Export aggregate.
type ExportRepository interface {
	Create(ctx context.Context, e *models.Export) error

	// Get returns ErrExportNotFound when the export is missing or outside scope.
	Get(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.Export, error)

	MarkPending(ctx context.Context, id uuid.UUID) error
	MarkReady(ctx context.Context, id uuid.UUID, fileName string) error
	MarkFailed(ctx context.Context, id uuid.UUID, note string) error
}

// RowSource reads the order data an export file is built from.
type RowSource interface {
	// Rows returns the given orders inside scope in a stable order (creation
	// time, then id). Unknown ids and ids outside scope are skipped.
	Rows(ctx context.Context, scope auth.Scope, orderIDs []uuid.UUID) ([]models.Row, error)
}
