// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the manager dashboard under whatever mount point the
// top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleManager))
		pr.Get("/", h.ServeDashboard)
	})

	return r
}
