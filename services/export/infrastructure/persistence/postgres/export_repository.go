package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/database"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	"github.com/ghuser/orderdesk/services/export/domain/models"
	"github.com/ghuser/orderdesk/services/export/infrastructure/persistence/postgres/db"
)

// ExportRepository implements repositories.ExportRepository against PostgreSQL.
type ExportRepository struct {
	db *database.Database
}

// NewExportRepository returns an ExportRepository backed by the given pool.
func NewExportRepository(database *database.Database) *ExportRepository {
	return &ExportRepository{db: database}
}

// Create inserts a new export.
func (r *ExportRepository) Create(ctx context.Context, e *models.Export) error {
	q := db.New(r.db.Conn(ctx))
	if err := q.InsertExport(ctx, db.InsertExportParams{
		ID:              e.ID,
		CompanyID:       e.CompanyID,
		RequestedBy:     e.RequestedBy,
		OrdersCreatedBy: e.OrdersCreatedBy,
		Status:          string(e.Status),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

// Get implements repositories.ExportRepository.
func (r *ExportRepository) Get(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.Export, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.GetExport(ctx, db.GetExportParams{ID: id, CompanyID: scope.CompanyID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exportdomain.ErrExportNotFound
		}
		return nil, fmt.Errorf("get export: %w", err)
	}
	return rowToExport(row)
}

// MarkPending implements repositories.ExportRepository.
func (r *ExportRepository) MarkPending(ctx context.Context, id uuid.UUID) error {
	n, err := db.New(r.db.Conn(ctx)).MarkExportPending(ctx, id)
	return affected("mark export pending", n, err)
}

// MarkReady implements repositories.ExportRepository.
func (r *ExportRepository) MarkReady(ctx context.Context, id uuid.UUID, fileName string) error {
	n, err := db.New(r.db.Conn(ctx)).MarkExportReady(ctx, db.MarkExportReadyParams{
		ID:       id,
		FileName: sql.NullString{String: fileName, Valid: fileName != ""},
	})
	return affected("mark export ready", n, err)
}

// MarkFailed implements repositories.ExportRepository.
func (r *ExportRepository) MarkFailed(ctx context.Context, id uuid.UUID, note string) error {
	n, err := db.New(r.db.Conn(ctx)).MarkExportFailed(ctx, db.MarkExportFailedParams{
		ID:   id,
		Note: sql.NullString{String: note, Valid: note != ""},
	})
	return affected("mark export failed", n, err)
}

// Rows implements repositories.RowSource. A scope without a company matches
// nothing.
func (r *ExportRepository) Rows(ctx context.Context, scope auth.Scope, orderIDs []uuid.UUID) ([]models.Row, error) {
	if len(orderIDs) == 0 || !scope.CompanyID.Valid {
		return nil, nil
	}
	q := db.New(r.db.Conn(ctx))
	rows, err := q.ListExportRows(ctx, db.ListExportRowsParams{
		OrderIds:  orderIDs,
		CompanyID: scope.CompanyID.UUID,
		CreatedBy: scope.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("list export rows: %w", err)
	}
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		out[i] = models.Row{
			ReferenceCode: row.ReferenceCode,
			ProductSKU:    row.Sku,
			Quantity:      int(row.Quantity),
			Status:        row.Status,
			CreatedBy:     row.Username,
		}
	}
	return out, nil
}

func affected(op string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return exportdomain.ErrExportNotFound
	}
	return nil
}

func rowToExport(row db.Export) (*models.Export, error) {
	status, err := models.ParseStatus(row.Status)
	if err != nil {
		return nil, err
	}
	return &models.Export{
		ID:              row.ID,
		CompanyID:       row.CompanyID,
		RequestedBy:     row.RequestedBy,
		OrdersCreatedBy: row.OrdersCreatedBy,
		Status:          status,
		FileName:        row.FileName.String,
		Note:            row.Note.String,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}
