package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/database"
	inventorydomain "github.com/ghuser/orderdesk/services/inventory/domain"
	"github.com/ghuser/orderdesk/services/inventory/domain/models"
	"github.com/ghuser/orderdesk/services/inventory/domain/repositories"
	"github.com/ghuser/orderdesk/services/inventory/infrastructure/persistence/postgres/db"
)

// ProductRepository implements repositories.ProductRepository against PostgreSQL.
type ProductRepository struct {
	db *database.Database
}

// NewProductRepository returns a ProductRepository backed by the given pool.
func NewProductRepository(database *database.Database) *ProductRepository {
	return &ProductRepository{db: database}
}

// Save inserts a new product. Returns ErrProductAlreadyExists when the SKU is taken.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	q := db.New(r.db.Conn(ctx))
	if err := q.InsertProduct(ctx, db.InsertProductParams{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		Sku:           p.SKU,
		Name:          p.Name,
		StockQuantity: int32(p.StockQuantity),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return inventorydomain.ErrProductAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID returns ErrProductNotFound when the product is missing or outside scope.
func (r *ProductRepository) GetByID(ctx context.Context, scope auth.Scope, id uuid.UUID) (*models.Product, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.GetProduct(ctx, db.GetProductParams{ID: id, CompanyID: scope.CompanyID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventorydomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	return rowToProduct(row), nil
}

// List returns a page of products ordered by SKU and the total count.
func (r *ProductRepository) List(ctx context.Context, scope auth.Scope, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	q := db.New(r.db.Conn(ctx))
	rows, err := q.ListProducts(ctx, db.ListProductsParams{
		CompanyID: scope.CompanyID,
		Lim:       int32(opts.Limit),
		Off:       int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	total, err := q.CountProducts(ctx, scope.CompanyID)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	products := make([]*models.Product, len(rows))
	for i, row := range rows {
		products[i] = rowToProduct(row)
	}
	return products, int(total), nil
}

// AdjustStock applies delta only when the result stays non-negative. When the
// guard rejects the update the product is looked up to tell a missing product
// from a negative result.
func (r *ProductRepository) AdjustStock(ctx context.Context, scope auth.Scope, id uuid.UUID, delta int) (*models.Product, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.AdjustStock(ctx, db.AdjustStockParams{
		Delta:     int32(delta),
		ID:        id,
		CompanyID: scope.CompanyID,
	})
	if err == nil {
		return rowToProduct(row), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if _, err := r.GetByID(ctx, scope, id); err != nil {
		return nil, err
	}
	return nil, inventorydomain.ErrNegativeStock
}

func rowToProduct(row db.Product) *models.Product {
	return &models.Product{
		ID:            row.ID,
		CompanyID:     row.CompanyID,
		SKU:           row.Sku,
		Name:          row.Name,
		StockQuantity: int(row.StockQuantity),
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt,
	}
}
