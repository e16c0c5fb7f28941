package services

import (
	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/pkg/cache"
	accountsvcs "github.com/ghuser/orderdesk/services/account/application/services"
	inventorypg "github.com/ghuser/orderdesk/services/inventory/infrastructure/persistence/postgres"
	"github.com/ghuser/orderdesk/services/order/infrastructure/inventory"
	"github.com/ghuser/orderdesk/services/order/infrastructure/persistence/postgres"
	"github.com/ghuser/orderdesk/services/order/infrastructure/queue"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Orders    *OrderService
	Processor *Processor
	Sweeper   *Sweeper
}

// New wires the order services. The blocking policy comes from the account
// context and the stock ledger from the inventory context; both join the
// transactions opened here.
func New(a *app.Application) *Services {
	orders := postgres.NewOrderRepository(a.Db)
	policy := accountsvcs.New(a).Blocking

	var statusCache StatusCache
	if a.Redis != nil {
		statusCache = cache.NewOrderStatusCache(a.Redis)
	}
	var tasks TaskQueue
	if a.EventBus != nil {
		tasks = queue.NewPublisher(a.EventBus)
	}

	return &Services{
		Orders: NewOrderService(OrderServiceDeps{
			Orders:  orders,
			Catalog: inventory.NewCatalog(inventorypg.NewProductRepository(a.Db)),
			Queue:   tasks,
			Policy:  policy,
			Tx:      a.Db,
			Cache:   statusCache,
			Log:     a.Logger,
		}),
		Processor: NewProcessor(ProcessorDeps{
			Orders: orders,
			Ledger: inventorypg.NewStockLedger(a.Db),
			Policy: policy,
			Tx:     a.Db,
			Approver: NewRandomApprover(
				a.Config.ApprovalSuccessRate,
				a.Config.ApprovalMinLatency,
				a.Config.ApprovalMaxLatency,
				nil,
			),
			Cache:   statusCache,
			Metrics: a.Metrics,
			Log:     a.Logger,
		}),
		Sweeper: NewSweeper(orders, a.Config.StuckOrderTimeout, statusCache, a.Metrics, a.Logger),
	}
}
