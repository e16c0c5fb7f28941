package models

import "github.com/google/uuid"

// ProductSnapshot is what ordering needs to know about a product at creation time.
type ProductSnapshot struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	SKU           string
	StockQuantity int
	IsActive      bool
}
