package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	"github.com/ghuser/orderdesk/services/account/domain/models"
	"github.com/ghuser/orderdesk/services/account/domain/repositories"
	domainsvcs "github.com/ghuser/orderdesk/services/account/domain/services"
)

// Transactor runs fn in one database transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProvisionRequest describes an account to create.
type ProvisionRequest struct {
	Username  string
	Email     string
	Password  string
	Role      auth.Role     // defaults to admin
	CompanyID uuid.NullUUID // required for demo accounts
	Superuser bool
}

// ProvisioningService creates accounts. Non-demo accounts created without a
// company join the default "main" company as admins.
type ProvisioningService struct {
	tx        Transactor
	companies repositories.CompanyRepository
	accounts  repositories.AccountRepository
	log       logger.Logger
}

// NewProvisioningService returns a ProvisioningService.
func NewProvisioningService(tx Transactor, companies repositories.CompanyRepository, accounts repositories.AccountRepository, log logger.Logger) *ProvisioningService {
	return &ProvisioningService{tx: tx, companies: companies, accounts: accounts, log: log}
}

// Provision validates req, resolves the company and saves the account in one transaction.
func (s *ProvisioningService) Provision(ctx context.Context, req ProvisionRequest) (*models.Account, error) {
	if err := domainsvcs.ValidateUsername(req.Username); err != nil {
		return nil, fmt.Errorf("%w: %w", accountdomain.ErrInvalidAccount, err)
	}
	if err := domainsvcs.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", accountdomain.ErrInvalidAccount, err)
	}
	role := req.Role
	if role == "" {
		role = auth.RoleAdmin
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role %q", accountdomain.ErrInvalidAccount, role)
	}
	if !req.CompanyID.Valid && domainsvcs.IsDemoUsername(req.Username) {
		return nil, accountdomain.ErrCompanyRequired
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		companyID, err := s.resolveCompany(ctx, req.CompanyID)
		if err != nil {
			return err
		}
		account = models.NewAccount(companyID, req.Username, req.Email, hash, role)
		account.IsSuperuser = req.Superuser
		if err := domainsvcs.ValidateAccountForCreation(account); err != nil {
			return fmt.Errorf("%w: %w", accountdomain.ErrInvalidAccount, err)
		}
		return s.accounts.Save(ctx, account)
	})
	if err != nil {
		return nil, fmt.Errorf("provision account: %w", err)
	}

	s.log.InfoContext(ctx, "account provisioned",
		"account_id", account.ID,
		"company_id", account.CompanyID,
		"role", account.Role,
	)
	return account, nil
}

func (s *ProvisioningService) resolveCompany(ctx context.Context, id uuid.NullUUID) (uuid.UUID, error) {
	if id.Valid {
		c, err := s.companies.GetByID(ctx, id.UUID)
		if err != nil {
			return uuid.Nil, err
		}
		return c.ID, nil
	}
	c, err := s.companies.GetOrCreate(ctx, models.DefaultCompanyName, models.DefaultCompanyDomain)
	if err != nil {
		return uuid.Nil, fmt.Errorf("default company: %w", err)
	}
	return c.ID, nil
}

// CreateCompany registers a new tenant.
func (s *ProvisioningService) CreateCompany(ctx context.Context, name, domain string) (*models.Company, error) {
	if name == "" || domain == "" {
		return nil, fmt.Errorf("%w: company name and domain are required", accountdomain.ErrInvalidAccount)
	}
	c := models.NewCompany(name, domain)
	if err := s.companies.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}
