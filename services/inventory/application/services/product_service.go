package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	inventorydomain "github.com/ghuser/orderdesk/services/inventory/domain"
	"github.com/ghuser/orderdesk/services/inventory/domain/models"
	"github.com/ghuser/orderdesk/services/inventory/domain/repositories"
)

// ProductService manages a company's catalogue and manual stock corrections.
// Order processing never goes through here; it uses the StockLedger.
type ProductService struct {
	repo repositories.ProductRepository
	log  logger.Logger
}

// NewProductService returns a ProductService.
func NewProductService(repo repositories.ProductRepository, log logger.Logger) *ProductService {
	return &ProductService{repo: repo, log: log}
}

// Create adds a product to the caller's company. Admins only.
func (s *ProductService) Create(ctx context.Context, id auth.Identity, sku, name string, stock int) (*models.Product, error) {
	if err := id.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}
	p := models.NewProduct(id.CompanyID, sku, name, stock)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", inventorydomain.ErrInvalidProduct, err)
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.log.InfoContext(ctx, "product created", "product_id", p.ID, "sku", p.SKU, "stock", p.StockQuantity)
	return p, nil
}

// Get returns a product visible to the caller.
func (s *ProductService) Get(ctx context.Context, id auth.Identity, productID uuid.UUID) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id.Scope(), productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !id.CanAccess(p) {
		return nil, fmt.Errorf("get product: %w", inventorydomain.ErrProductNotFound)
	}
	return p, nil
}

// List returns a page of the caller's products plus the total count.
func (s *ProductService) List(ctx context.Context, id auth.Identity, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	products, total, err := s.repo.List(ctx, id.Scope(), opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// AdjustStock applies a manual stock correction. Admins and operators only.
func (s *ProductService) AdjustStock(ctx context.Context, id auth.Identity, productID uuid.UUID, delta int) (*models.Product, error) {
	if err := id.Require(auth.RoleAdmin, auth.RoleOperator); err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", inventorydomain.ErrInvalidProduct)
	}
	p, err := s.repo.AdjustStock(ctx, id.Scope(), productID, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	s.log.InfoContext(ctx, "stock adjusted",
		"product_id", productID,
		"delta", delta,
		"stock", p.StockQuantity,
		"by", id.AccountID,
	)
	return p, nil
}
