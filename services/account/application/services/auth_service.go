package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/logger"
	accountdomain "github.com/ghuser/orderdesk/services/account/domain"
	"github.com/ghuser/orderdesk/services/account/domain/models"
	"github.com/ghuser/orderdesk/services/account/domain/repositories"
)

// AuthService checks credentials for both login entry points: the token API
// and the console session. Blocked accounts are rejected before any
// credential is issued.
type AuthService struct {
	accounts repositories.AccountRepository
	tokens   *auth.TokenIssuer
	log      logger.Logger
}

// NewAuthService returns an AuthService. tokens may be nil when the process
// never issues API tokens.
func NewAuthService(accounts repositories.AccountRepository, tokens *auth.TokenIssuer, log logger.Logger) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, log: log}
}

// Authenticate returns the account for valid credentials.
// ErrInvalidCredentials covers unknown usernames and wrong passwords alike;
// ErrAccountBlocked is only reported after the password matched.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, accountdomain.ErrAccountNotFound) {
			_, _ = checkPassword(dummyHash(), password)
			return nil, accountdomain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	ok, err := checkPassword(account.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("authenticate: compare password: %w", err)
	}
	if !ok {
		return nil, accountdomain.ErrInvalidCredentials
	}

	if account.IsBlocked {
		s.log.WarnContext(ctx, "blocked account tried to log in",
			"account_id", account.ID,
			"failed_orders_count", account.FailedOrdersCount,
		)
		return nil, accountdomain.ErrAccountBlocked
	}
	return account, nil
}

// IssueToken authenticates and signs an API token for the account.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (string, time.Time, error) {
	if s.tokens == nil {
		return "", time.Time{}, errors.New("issue token: token issuer not configured")
	}
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", time.Time{}, err
	}
	token, exp, err := s.tokens.Issue(account.Identity())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.InfoContext(ctx, "api token issued", "account_id", account.ID, "expires_at", exp)
	return token, exp, nil
}
