// Package inventory adapts the inventory context's product repository to the
// order context's ProductCatalog port.
package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/services/inventory/domain/repositories"
	"github.com/ghuser/orderdesk/services/order/domain/models"
)

// Catalog implements the order services' ProductCatalog.
type Catalog struct {
	products repositories.ProductRepository
}

// NewCatalog returns a Catalog reading from products.
func NewCatalog(products repositories.ProductRepository) *Catalog {
	return &Catalog{products: products}
}

// Product returns the product as ordering sees it. Errors from the inventory
// context, including its not-found sentinel, pass through unchanged.
func (c *Catalog) Product(ctx context.Context, scope auth.Scope, id uuid.UUID) (models.ProductSnapshot, error) {
	p, err := c.products.GetByID(ctx, scope, id)
	if err != nil {
		return models.ProductSnapshot{}, err
	}
	return models.ProductSnapshot{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}, nil
}
