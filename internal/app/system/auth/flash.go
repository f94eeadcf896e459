// internal/app/system/auth/flash.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Flash kinds map to toast styles in the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot toast carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

const flashesKey ctxKey = "flashes"

// AddFlash queues a toast for the next rendered page. Flashes are stored as
// "kind|message" strings so the cookie needs no gob registration.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess, _ := sm.GetSession(r)
	sess.AddFlash(Flash{Kind: kind, Message: msg}.encode())
	if err := sess.Save(r, w); err != nil {
		sm.logger.Warn("flash save failed", zap.Error(err))
	}
}

// LoadFlashes pops pending toasts on GET page loads and carries them in the
// request context. Non-GET requests leave them queued for the redirect target.
func (sm *SessionManager) LoadFlashes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.Header.Get("HX-Request") == "true" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := sess.Flashes()
		if len(raw) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if err := sess.Save(r, w); err != nil {
			sm.logger.Warn("flash pop failed", zap.Error(err))
		}

		flashes := make([]Flash, 0, len(raw))
		for _, v := range raw {
			s, ok := v.(string)
			if !ok {
				continue
			}
			flashes = append(flashes, parseFlash(s))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), flashesKey, flashes)))
	})
}

// Flashes returns the toasts popped for this request.
func Flashes(r *http.Request) []Flash {
	f, _ := r.Context().Value(flashesKey).([]Flash)
	return f
}

func (f Flash) encode() string { return f.Kind + "|" + f.Message }

func parseFlash(s string) Flash {
	kind, msg, ok := strings.Cut(s, "|")
	if !ok {
		return Flash{Kind: FlashSuccess, Message: s}
	}
	return Flash{Kind: kind, Message: msg}
}
