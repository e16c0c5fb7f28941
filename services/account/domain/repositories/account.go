package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/services/account/domain/models"
)

// CompanyRepository is the persistence interface for the Company aggregate.
type CompanyRepository interface {
	Save(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)

	// GetOrCreate returns the company with the given name and domain, creating
	// it when missing. Concurrent callers converge on one row.
	GetOrCreate(ctx context.Context, name, domain string) (*models.Company, error)
}

// AccountRepository is the persistence interface for the Account aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Every counter or flag change is a single conditional statement. Methods
// taking a Scope only touch accounts inside it.
type AccountRepository interface {
	Save(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// RecordProcessedFailure increments the failure counter and blocks the
	// account when the new count reaches threshold, in one statement.
	RecordProcessedFailure(ctx context.Context, id uuid.UUID, threshold int) (models.FailureTally, error)

	// BlockOverThreshold blocks every unblocked account whose stored counter
	// is at or above threshold and returns the IDs it blocked.
	BlockOverThreshold(ctx context.Context, scope auth.Scope, threshold int) ([]uuid.UUID, error)

	// ResetFailures sets the counter of the given accounts to zero.
	ResetFailures(ctx context.Context, scope auth.Scope, ids []uuid.UUID) (int64, error)

	// Unblock clears the blocked flag of the given accounts.
	Unblock(ctx context.Context, scope auth.Scope, ids []uuid.UUID) (int64, error)
}
