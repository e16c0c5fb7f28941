package services

import (
	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Product *ProductService
}

// New wires all inventory application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	return &Services{
		Product: NewProductService(postgres.NewProductRepository(a.Db), a.Logger),
	}
}
