// internal/app/features/home/routes.go
package home

import (
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Get("/", h.ServeRoot)
	return r
}
