package services

import (
	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/account/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Auth         *AuthService
	Provisioning *ProvisioningService
	Blocking     *BlockingService
}

// New wires all account application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	accounts := postgres.NewAccountRepository(a.Db)
	companies := postgres.NewCompanyRepository(a.Db)
	return &Services{
		Auth:         NewAuthService(accounts, a.Tokens, a.Logger),
		Provisioning: NewProvisioningService(a.Db, companies, accounts, a.Logger),
		Blocking:     NewBlockingService(accounts, a.Metrics, a.Logger),
	}
}
