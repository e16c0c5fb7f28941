package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/export/application/handlers"
	appsvcs "github.com/ghuser/orderdesk/services/export/application/services"
)

// ExportRoutes registers export endpoints on the provided chi router.
func ExportRoutes(r chi.Router, a *app.Application) {
	h := handlers.NewExportsHandler(appsvcs.New(a), a.Logger)
	r.Route("/exports", func(r chi.Router) {
		r.Post("/", h.Request)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/download", h.Download)
	})
}
