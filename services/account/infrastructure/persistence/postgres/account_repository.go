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
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	"github.com/ghuser/orderdesk/services/account/domain/models"
	"github.com/ghuser/orderdesk/services/account/infrastructure/persistence/postgres/db"
)

// AccountRepository implements repositories.AccountRepository against PostgreSQL.
// Queries run on the transaction carried by ctx when there is one, so the
// order processor can record a failure inside its own unit of work.
type AccountRepository struct {
	db *database.Database
}

// NewAccountRepository returns an AccountRepository backed by the given pool.
func NewAccountRepository(database *database.Database) *AccountRepository {
	return &AccountRepository{db: database}
}

// Save inserts a new account. Returns ErrAccountAlreadyExists when the username is taken.
func (r *AccountRepository) Save(ctx context.Context, a *models.Account) error {
	q := db.New(r.db.Conn(ctx))
	if err := q.InsertAccount(ctx, db.InsertAccountParams{
		ID:                a.ID,
		CompanyID:         a.CompanyID,
		Username:          a.Username,
		Email:             a.Email,
		PasswordHash:      a.PasswordHash,
		Role:              string(a.Role),
		IsSuperuser:       a.IsSuperuser,
		IsBlocked:         a.IsBlocked,
		FailedOrdersCount: int32(a.FailedOrdersCount),
		CreatedAt:         a.CreatedAt,
	}); err != nil {
		if isUniqueViolation(err) {
			return accountdomain.ErrAccountAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID returns ErrAccountNotFound when no account has the given ID.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountdomain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	return rowToAccount(row), nil
}

// GetByUsername returns ErrAccountNotFound when the username is unknown.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountdomain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account by username: %w", err)
	}
	return rowToAccount(row), nil
}

// RecordProcessedFailure increments and compares in a single statement.
func (r *AccountRepository) RecordProcessedFailure(ctx context.Context, id uuid.UUID, threshold int) (models.FailureTally, error) {
	q := db.New(r.db.Conn(ctx))
	row, err := q.RecordProcessedFailure(ctx, db.RecordProcessedFailureParams{
		Threshold: int32(threshold),
		ID:        id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FailureTally{}, accountdomain.ErrAccountNotFound
		}
		return models.FailureTally{}, fmt.Errorf("record processed failure: %w", err)
	}
	return models.FailureTally{
		AccountID:    id,
		Count:        int(row.FailedOrdersCount),
		Blocked:      row.IsBlocked,
		NewlyBlocked: row.IsBlocked && !row.WasBlocked,
	}, nil
}

// BlockOverThreshold only touches accounts that are not blocked yet, so
// repeated runs report nothing new.
func (r *AccountRepository) BlockOverThreshold(ctx context.Context, scope auth.Scope, threshold int) ([]uuid.UUID, error) {
	q := db.New(r.db.Conn(ctx))
	ids, err := q.BlockAccountsOverThreshold(ctx, db.BlockAccountsOverThresholdParams{
		Threshold: int32(threshold),
		CompanyID: scope.CompanyID,
	})
	if err != nil {
		return nil, fmt.Errorf("block accounts over threshold: %w", err)
	}
	return ids, nil
}

// ResetFailures zeroes the counter of the given accounts inside scope.
func (r *AccountRepository) ResetFailures(ctx context.Context, scope auth.Scope, ids []uuid.UUID) (int64, error) {
	q := db.New(r.db.Conn(ctx))
	n, err := q.ResetFailedOrders(ctx, db.ResetFailedOrdersParams{
		Ids:       ids,
		CompanyID: scope.CompanyID,
	})
	if err != nil {
		return 0, fmt.Errorf("reset failed orders: %w", err)
	}
	return n, nil
}

// Unblock clears the blocked flag of the given accounts inside scope.
func (r *AccountRepository) Unblock(ctx context.Context, scope auth.Scope, ids []uuid.UUID) (int64, error) {
	q := db.New(r.db.Conn(ctx))
	n, err := q.UnblockAccounts(ctx, db.UnblockAccountsParams{
		Ids:       ids,
		CompanyID: scope.CompanyID,
	})
	if err != nil {
		return 0, fmt.Errorf("unblock accounts: %w", err)
	}
	return n, nil
}

func rowToAccount(row db.Account) *models.Account {
	return &models.Account{
		ID:                row.ID,
		CompanyID:         row.CompanyID,
		Username:          row.Username,
		Email:             row.Email,
		PasswordHash:      row.PasswordHash,
		Role:              auth.Role(row.Role),
		IsSuperuser:       row.IsSuperuser,
		IsBlocked:         row.IsBlocked,
		FailedOrdersCount: int(row.FailedOrdersCount),
		CreatedAt:         row.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
