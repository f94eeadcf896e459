// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/formutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/ratelimit"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// SuccessMessage is the toast shown after a new intern signs up.
const SuccessMessage = "Kayıt başarılı! Yönlendiriliyorsunuz..."

type Handler struct {
	Identity   *identity.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(idSvc *identity.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Identity: idSvc, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

type registerFormData struct {
	formutil.Base
	Name  string
	Email string
}

// ServeRegister handles GET /register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var data registerFormData
	formutil.SetBase(&data.Base, r, "Kayıt Ol", "/login")
	templates.Render(w, r, "register", data)
}

// HandleRegisterPost creates the account and intern profile, signs the new
// user in and sends them to /activities.
func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Geçersiz form verisi.", "/register")
		return
	}

	data := registerFormData{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Email: strings.TrimSpace(r.FormValue("email")),
	}
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	if res := inputval.Registration(data.Name, data.Email, password, confirm); res.HasErrors() {
		formutil.SetBase(&data.Base, r, "Kayıt Ol", "/login")
		data.SetResult(res)
		templates.Render(w, r, "register", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	signed, err := h.Identity.Register(ctx, data.Email, password, data.Name, identity.Client{
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if !errors.Is(err, identity.ErrEmailTaken) {
			h.ErrLog.Log(r, "register failed", err)
		}
		formutil.SetBase(&data.Base, r, "Kayıt Ol", "/login")
		data.SetError(identity.Message(err))
		templates.Render(w, r, "register", data)
		return
	}

	welcome := auth.Flash{Kind: auth.FlashSuccess, Message: SuccessMessage}
	if err := h.SessionMgr.SignIn(w, r, signed.User.UserID.Hex(), signed.Session.ID.Hex(), welcome); err != nil {
		// The account exists; send the user to sign in normally.
		h.ErrLog.Log(r, "save session failed", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Log.Info("intern registered", zap.String("user_id", signed.User.UserID.Hex()))
	http.Redirect(w, r, "/activities", http.StatusSeeOther)
}
