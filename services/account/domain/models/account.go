package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
)

// BlockThreshold is the processed-failure count at which an account is blocked.
const BlockThreshold = 3

// DemoUsernamePrefix marks accounts that must name their company explicitly.
const DemoUsernamePrefix = "demo_"

// Account is a login identity and its profile inside one company.
type Account struct {
	ID                uuid.UUID
	CompanyID         uuid.UUID // tenant scope
	Username          string
	Email             string
	PasswordHash      string
	Role              auth.Role
	IsSuperuser       bool
	IsBlocked         bool
	FailedOrdersCount int
	CreatedAt         time.Time
}

// NewAccount constructs an unblocked Account with a zero failure count.
func NewAccount(companyID uuid.UUID, username, email, passwordHash string, role auth.Role) *Account {
	return &Account{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

// Identity is what the account looks like to the access scoping layer.
func (a *Account) Identity() auth.Identity {
	return auth.Identity{
		AccountID: a.ID,
		CompanyID: a.CompanyID,
		Role:      a.Role,
		Superuser: a.IsSuperuser,
	}
}

// FailureTally is the outcome of recording one processed failure.
type FailureTally struct {
	AccountID    uuid.UUID
	Count        int
	Blocked      bool
	NewlyBlocked bool
}
