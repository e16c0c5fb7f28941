package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/orderdesk/pkg/app"
	"github.com/ghuser/orderdesk/services/account/application/handlers"
	appsvcs "github.com/ghuser/orderdesk/services/account/application/services"
)

// TokenRoutes registers the unauthenticated token endpoint on the API router.
func TokenRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Post("/auth/token", handlers.NewPostTokenHandler(svcs).Execute)
}

// ConsoleRoutes registers the session login and logout endpoints. They run
// outside the session middleware.
func ConsoleRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Post("/login", handlers.NewConsoleLoginHandler(svcs, a.SessionStore, a.Logger).Execute)
	r.Post("/logout", handlers.NewConsoleLogoutHandler(a.SessionStore).Execute)
}

// AccountRoutes registers endpoints that need an authenticated identity.
// Mount behind either the token or the session middleware.
func AccountRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	admin := handlers.NewAdminAccountsHandler(svcs)
	r.Get("/me", handlers.MeHandler{}.Execute)
	r.Route("/admin/accounts", func(r chi.Router) {
		r.Post("/", admin.Create)
		r.Post("/block-over-threshold", admin.BlockOverThreshold)
		r.Post("/reset-failures", admin.ResetFailures)
		r.Post("/unblock", admin.Unblock)
	})
}
