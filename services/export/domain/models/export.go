package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	exportdomain "github.com/ghuser/orderdesk/services/export/domain"
)

// MaxOrdersPerExport bounds the id list carried by one generation task.
const MaxOrdersPerExport = 1000

// Export is a requested CSV snapshot of a set of orders.
type Export struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID // inherited from the requesting account
	RequestedBy uuid.UUID

	// OrdersCreatedBy limits the file to orders of one creator. Set when an
	// operator requests the export.
	OrdersCreatedBy uuid.NullUUID
	Status          Status
	FileName        string // set once ready
	Note            string // failure reason
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewExport constructs a pending export for the requester's company.
func NewExport(companyID, requestedBy uuid.UUID) *Export {
	now := time.Now().UTC()
	return &Export{
		ID:          uuid.New(),
		CompanyID:   companyID,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// LimitToCreator restricts the exported rows to orders created by accountID.
func (e *Export) LimitToCreator(accountID uuid.UUID) {
	e.OrdersCreatedBy = uuid.NullUUID{UUID: accountID, Valid: true}
}

// OwningCompany implements auth.TenantScoped.
func (e *Export) OwningCompany() uuid.UUID {
	return e.CompanyID
}

// Downloadable returns ErrExportNotReady unless a file has been attached.
func (e *Export) Downloadable() error {
	if e.Status != StatusReady {
		return fmt.Errorf("%w: status is %s", exportdomain.ErrExportNotReady, e.Status)
	}
	if e.FileName == "" {
		return exportdomain.ErrExportFileMissing
	}
	return nil
}

// FileNameFor builds a storage name that is unique per generation run, so a
// retried export never overwrites an earlier file.
func FileNameFor(exportID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("exports/export_%d_%s.csv", at.UnixNano(), exportID)
}

// NormalizeOrderIDs drops duplicates and nil ids, keeping first-seen order.
func NormalizeOrderIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	switch {
	case len(out) == 0:
		return nil, fmt.Errorf("%w: no orders selected", exportdomain.ErrInvalidExport)
	case len(out) > MaxOrdersPerExport:
		return nil, fmt.Errorf("%w: at most %d orders per export", exportdomain.ErrInvalidExport, MaxOrdersPerExport)
	}
	return out, nil
}

// Row is one line of the generated file.
type Row struct {
	ReferenceCode uuid.UUID
	ProductSKU    string
	Quantity      int
	Status        string
	CreatedBy     string
}

// Header is the fixed column order of every export file.
var Header = []string{"Reference Code", "Product SKU", "Quantity", "Status", "Created By"}

// Record renders r in Header order.
func (r Row) Record() []string {
	return []string{
		r.ReferenceCode.String(),
		r.ProductSKU,
		fmt.Sprint(r.Quantity),
		r.Status,
		r.CreatedBy,
	}
}
