package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/database"
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	"github.com/ghuser/orderdesk/services/account/domain/models"
	"github.com/ghuser/orderdesk/services/account/infrastructure/persistence/postgres/db"
)

// CompanyRepository implements repositories.CompanyRepository against PostgreSQL.
type CompanyRepository struct {
	db *database.Database
}

// NewCompanyRepository returns a CompanyRepository backed by the given pool.
func NewCompanyRepository(database *database.Database) *CompanyRepository {
	return &CompanyRepository{db: database}
}

// Save inserts a new company. Returns ErrCompanyAlreadyExists when the name and
// domain pair or the domain is taken.
func (r *CompanyRepository) Save(ctx context.Context, c *models.Company) error {
	q := db.New(r.db.Conn(ctx))
	if err := q.InsertCompany(ctx, db.InsertCompanyParams{
		ID:        c.ID,
		Name:      c.Name,
		Domain:    c.Domain,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}); err != nil {
		if isUniqueViolation(err) {
			return accountdomain.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID returns ErrCompanyNotFound when no company has the given ID.
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.GetCompanyByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountdomain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("query company: %w", err)
	}
	return rowToCompany(row), nil
}

// GetOrCreate upserts on the (name, domain) key so concurrent callers share one row.
func (r *CompanyRepository) GetOrCreate(ctx context.Context, name, domain string) (*models.Company, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.UpsertCompany(ctx, db.UpsertCompanyParams{
		ID:     uuid.New(),
		Name:   name,
		Domain: domain,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, accountdomain.ErrCompanyAlreadyExists
		}
		return nil, fmt.Errorf("upsert company: %w", err)
	}
	return rowToCompany(row), nil
}

func rowToCompany(row db.Company) *models.Company {
	return &models.Company{
		ID:        row.ID,
		Name:      row.Name,
		Domain:    row.Domain,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
}
