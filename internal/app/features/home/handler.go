// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"go.uber.org/zap"
)

// Handler sends each role to its landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot redirects managers to /dashboard and everyone else to /activities.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LandingPath(r), http.StatusSeeOther)
}

// LandingPath is the first page for the current user's role.
func LandingPath(r *http.Request) string {
	if authz.IsManager(r) {
		return "/dashboard"
	}
	return "/activities"
}
