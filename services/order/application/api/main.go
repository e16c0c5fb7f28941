package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/order/application/handlers"
	appsvcs "github.com/ghuser/orderdesk/services/order/application/services"
)

// OrderRoutes registers order endpoints on the provided chi router.
func OrderRoutes(r chi.Router, a *app.Application) {
	h := handlers.NewOrdersHandler(appsvcs.New(a))
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/bulk", h.BulkCreate)
		r.Post("/process", h.ProcessMany)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/status", h.Status)
		r.Put("/{id}/status", h.SetStatus)
		r.Post("/{id}/process", h.Process)
		r.Post("/{id}/retry", h.Retry)
	})
}
