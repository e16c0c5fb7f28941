package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/storage"
	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
	"github.com/ghuser/orderdesk/services/export/domain/models"
	"github.com/ghuser/orderdesk/services/export/domain/repositories"
)

// ExportService handles export requests and downloads.
type ExportService struct {
	exports repositories.ExportRepository
	queue   TaskQueue
	tx      Transactor
	store   FileStore
	log     logger.Logger
}

// NewExportService creates an ExportService.
func NewExportService(exports repositories.ExportRepository, queue TaskQueue, tx Transactor, store FileStore, log logger.Logger) *ExportService {
	return &ExportService{exports: exports, queue: queue, tx: tx, store: store, log: log}
}

// Request records a pending export for the caller's company and enqueues its
// generation in the same transaction. The generator leaves out orders the
// caller could not read: other companies' orders, and for operators, orders
// created by someone else.
func (s *ExportService) Request(ctx context.Context, id auth.Identity, orderIDs []uuid.UUID) (*models.Export, error) {
	ids, err := models.NormalizeOrderIDs(orderIDs)
	if err != nil {
		return nil, err
	}
	e := models.NewExport(id.CompanyID, id.AccountID)
	if own := id.OwnScope().CreatedBy; own.Valid {
		e.LimitToCreator(own.UUID)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.exports.Create(ctx, e); err != nil {
			return err
		}
		return s.queue.EnqueueGeneration(ctx, e.ID, ids)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "export requested", "export_id", e.ID, "orders", len(ids), "account_id", id.AccountID)
	return e, nil
}

// Get returns an export visible to the caller.
func (s *ExportService) Get(ctx context.Context, id auth.Identity, exportID uuid.UUID) (*models.Export, error) {
	e, err := s.exports.Get(ctx, id.Scope(), exportID)
	if err != nil {
		return nil, err
	}
	if !id.CanAccess(e) {
		return nil, exportdomain.ErrExportNotFound
	}
	return e, nil
}

// Download opens the file of a ready export. The caller closes the reader.
// It also returns the base name to offer to the client.
func (s *ExportService) Download(ctx context.Context, id auth.Identity, exportID uuid.UUID) (io.ReadCloser, string, error) {
	e, err := s.Get(ctx, id, exportID)
	if err != nil {
		return nil, "", err
	}
	if err := e.Downloadable(); err != nil {
		return nil, "", err
	}

	rc, err := s.store.Open(ctx, e.FileName)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.WarnContext(ctx, "export file missing from storage", "export_id", e.ID, "file_name", e.FileName)
		return nil, "", fmt.Errorf("%w: %s", exportdomain.ErrExportFileMissing, e.FileName)
	}
	if err != nil {
		return nil, "", err
	}
	return rc, path.Base(e.FileName), nil
}
