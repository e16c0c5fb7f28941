package services

import (
	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/export/infrastructure/persistence/postgres"
	"github.com/ghuser/orderdesk/services/export/infrastructure/queue"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Exports   *ExportService
	Generator *Generator
}

// New wires the export services.
func New(a *app.Application) *Services {
	repo := postgres.NewExportRepository(a.Db)

	var tasks TaskQueue
	if a.EventBus != nil {
		tasks = queue.NewPublisher(a.EventBus)
	}

	return &Services{
		Exports:   NewExportService(repo, tasks, a.Db, a.Storage, a.Logger),
		Generator: NewGenerator(repo, repo, a.Storage, a.Metrics, a.Logger),
	}
}
