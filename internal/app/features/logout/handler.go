// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Toasts.
const (
	SuccessMessage = "Çıkış yapıldı"
)

// SessionCloser closes a server-side session. *identity.Service satisfies it.
type SessionCloser interface {
	Logout(ctx context.Context, sessionID primitive.ObjectID) error
}

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Sessions   SessionCloser
}

func NewHandler(sessionMgr *auth.SessionManager, sessions SessionCloser, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Sessions:   sessions,
	}
}

// HandleLogout handles POST /logout: closes the server-side session, clears
// the cookie and sends the visitor to /login.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && primitive.IsValidObjectID(u.SessionID) {
		sid, _ := primitive.ObjectIDFromHex(u.SessionID)
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		if err := h.Sessions.Logout(ctx, sid); err != nil {
			h.Log.Error("logout: close session", zap.Error(err), zap.String("user_id", u.ID))
			h.SessionMgr.AddFlash(w, r, auth.FlashError, identity.Message(err))
			redirect(w, r, "/")
			return
		}
	}

	if err := h.SessionMgr.SignOut(w, r, auth.Flash{Kind: auth.FlashSuccess, Message: SuccessMessage}); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	redirect(w, r, "/login")
}

func redirect(w http.ResponseWriter, r *http.Request, dest string) {
	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
