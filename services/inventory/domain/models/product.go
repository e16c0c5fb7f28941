package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Product is a stocked item. StockQuantity never goes below zero; every
// change is a guarded single-statement update.
type Product struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID // tenant scope
	SKU           string
	Name          string
	StockQuantity int
	IsActive      bool
	CreatedAt     time.Time
}

// NewProduct constructs an active Product with a generated ID.
func NewProduct(companyID uuid.UUID, sku, name string, stock int) *Product {
	return &Product{
		ID:            uuid.New(),
		CompanyID:     companyID,
		SKU:           sku,
		Name:          name,
		StockQuantity: stock,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
}

// OwningCompany implements auth.TenantScoped.
func (p *Product) OwningCompany() uuid.UUID {
	return p.CompanyID
}

// Validate checks the structural constraints of a new product.
func (p *Product) Validate() error {
	switch {
	case p.SKU == "" || len(p.SKU) > 100:
		return errors.New("sku must be 1 to 100 characters")
	case p.Name == "" || len(p.Name) > 255:
		return errors.New("name must be 1 to 255 characters")
	case p.StockQuantity < 0:
		return errors.New("stock_quantity must not be negative")
	case p.CompanyID == uuid.Nil:
		return errors.New("company_id must be set")
	}
	return nil
}
