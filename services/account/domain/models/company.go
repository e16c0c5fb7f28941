package models

import (
	"time"

	"github.com/google/uuid"
)

// Default tenant handed to accounts provisioned without a company.
const (
	DefaultCompanyName   = "main"
	DefaultCompanyDomain = "main.com"
)

// Company is the tenant boundary and root aggregate for multi-tenancy.
type Company struct {
	ID        uuid.UUID
	Name      string
	Domain    string
	IsActive  bool
	CreatedAt time.Time
}

// NewCompany constructs an active Company with a generated ID.
func NewCompany(name, domain string) *Company {
	return &Company{
		ID:        uuid.New(),
		Name:      name,
		Domain:    domain,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}
