// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	nav "github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	render(w, r, http.StatusUnauthorized, "Giriş gerekli", "Devam etmek için lütfen giriş yapın.", backURL)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusForbidden, "Erişim engellendi", msg, backURL)
}

// RenderNotFound shows a not-found page with a message.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusNotFound, "Bulunamadı", msg, backURL)
}

// RenderBadRequest shows an invalid-input page with a message.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}
	render(w, r, http.StatusBadRequest, "Geçersiz istek", msg, backURL)
}

// RenderServerError shows a generic failure page with a message.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}
	if msg == "" {
		msg = "Bir hata oluştu"
	}
	render(w, r, http.StatusInternalServerError, "Bir hata oluştu", msg, backURL)
}

/*─────────────────────────────────────────────────────────────────────────────*
| HTMX fragments                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HTMXError answers an HTMX request with a status and an error toast trigger.
// Non-HTMX requests fall through to fallback.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if r.Header.Get("HX-Request") != "true" {
		fallback()
		return
	}
	w.Header().Set("HX-Trigger", toastTrigger(msg))
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(status)
}

// HTMXForbidden is HTMXError with 403 and a full-page fallback.
func HTMXForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusForbidden, msg, func() { RenderForbidden(w, r, msg, backURL) })
}

// HTMXNotFound is HTMXError with 404 and a full-page fallback.
func HTMXNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusNotFound, msg, func() { RenderNotFound(w, r, msg, backURL) })
}

// HTMXBadRequest is HTMXError with 400 and a full-page fallback.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() { RenderBadRequest(w, r, msg, backURL) })
}
