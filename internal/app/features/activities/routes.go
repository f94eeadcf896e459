// internal/app/features/activities/routes.go
package activities

import (
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the activity pages. Every route needs a session; edit and
// delete are further limited to the owner inside the handlers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleNew)
	r.Get("/{id}/edit", h.ServeEdit)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
