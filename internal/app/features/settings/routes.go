// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the settings page and its two forms.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	h.MountRoutes(r)
	return r
}

// MountRoutes mounts all settings routes on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeSettings)
	r.Post("/profile", h.HandleProfile)
	r.Post("/password", h.HandlePassword)
}
