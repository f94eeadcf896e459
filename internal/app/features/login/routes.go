// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the login form. Signed-in visitors go to /activities.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RedirectIfSignedIn("/activities"))
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
