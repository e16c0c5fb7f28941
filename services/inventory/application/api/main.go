package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/orderdesk/services/inventory/application/services"
)

// ProductRoutes registers product endpoints on the provided chi router.
func ProductRoutes(r chi.Router, a *app.Application) {
	h := handlers.NewProductsHandler(appsvcs.New(a))
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/stock", h.AdjustStock)
	})
}
