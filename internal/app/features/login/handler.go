// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/formutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/metrics"
	"github.com/dalemusser/stajyerlog/internal/app/system/navigation"
	"github.com/dalemusser/stajyerlog/internal/app/system/ratelimit"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// SuccessMessage is the toast shown after signing in.
const SuccessMessage = "Giriş başarılı!"

type Handler struct {
	Identity   *identity.Service
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Metrics    *metrics.Metrics
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	idSvc *identity.Service,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	m *metrics.Metrics,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Identity:   idSvc,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Metrics:    m,
		ErrLog:     errLog,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	formutil.Base
	Email     string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	data := loginFormData{ReturnURL: query.Get(r, "return")}
	formutil.SetBase(&data.Base, r, "Giriş Yap", "/")
	templates.Render(w, r, "login", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Geçersiz form verisi.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if res := inputval.Credentials(email, password); res.HasErrors() {
		h.renderForm(w, r, http.StatusOK, email, func(b *formutil.Base) { b.SetResult(res) })
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, email); !ok {
			h.Metrics.Login(metrics.LoginRateLimited)
			h.Log.Warn("login rate limited", zap.String("ip", ratelimit.ClientIP(r)))
			h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, email)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	signed, err := h.Identity.Login(ctx, email, password, identity.Client{
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		// A bare sentinel means bad credentials; a wrapped one carries a store failure.
		if err == identity.ErrLoginFailed {
			h.Metrics.Login(metrics.LoginFailed)
		} else {
			h.Metrics.Login(metrics.LoginError)
			h.ErrLog.Log(r, "login failed", err)
		}
		h.renderFormWithError(w, r, http.StatusOK, identity.Message(err), email)
		return
	}

	welcome := auth.Flash{Kind: auth.FlashSuccess, Message: SuccessMessage}
	if err := h.SessionMgr.SignIn(w, r, signed.User.UserID.Hex(), signed.Session.ID.Hex(), welcome); err != nil {
		h.Metrics.Login(metrics.LoginError)
		h.ErrLog.Log(r, "save session failed", err)
		h.renderFormWithError(w, r, http.StatusOK, identity.GenericMessage, email)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.Metrics.Login(metrics.LoginSuccess)
	h.Log.Info("user signed in",
		zap.String("user_id", signed.User.UserID.Hex()),
		zap.String("role", signed.User.Role))

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.LoginReturn), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, email string) {
	h.renderForm(w, r, status, email, func(b *formutil.Base) { b.SetError(msg) })
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, email string, apply func(*formutil.Base)) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	data := loginFormData{Email: email, ReturnURL: ret}
	formutil.SetBase(&data.Base, r, "Giriş Yap", "/")
	apply(&data.Base)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "login", data)
}
