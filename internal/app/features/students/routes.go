// internal/app/features/students/routes.go
package students

import (
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the intern pages. Only managers get through.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole(models.RoleManager))

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)
	r.Post("/{id}/activities/{activityID}/comment", h.HandleComment)
	return r
}
