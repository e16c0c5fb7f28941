package domain

import "errors"

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrProductNotFound indicates the product does not exist or belongs to another company.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductAlreadyExists indicates the SKU is taken.
	ErrProductAlreadyExists = errors.New("product already exists")

	// ErrInvalidProduct indicates the product violates domain constraints.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrNegativeStock is returned when an adjustment would take stock below zero.
	ErrNegativeStock = errors.New("stock cannot go negative")
)
