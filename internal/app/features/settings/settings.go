// internal/app/features/settings/settings.go
package settings

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/formutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type settingsVM struct {
	formutil.Base
	Name          string
	Email         string
	PasswordError string // shown on the password form; Error belongs to the name form
	PasswordField map[string]string
}

func (vm settingsVM) PasswordFieldError(field string) string {
	return vm.PasswordField[field]
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, apply func(*settingsVM)) {
	vm := settingsVM{Name: name}
	if u, ok := auth.CurrentUser(r); ok {
		vm.Email = u.Email
	}
	formutil.SetBase(&vm.Base, r, "Ayarlar", "/")
	if apply != nil {
		apply(&vm)
	}
	templates.Render(w, r, "settings", vm)
}

// ServeSettings displays the profile and password forms.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	h.render(w, r, u.Name, nil)
}

// HandleProfile changes the display name.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	name := normalize.Name(r.FormValue("name"))
	if res := inputval.Name(name); res.HasErrors() {
		h.render(w, r, name, func(vm *settingsVM) { vm.SetResult(res) })
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Identity.UpdateName(ctx, uid, name); err != nil {
		h.ErrLog.Log(r, "update name failed", err)
		h.render(w, r, name, func(vm *settingsVM) { vm.SetError(identity.Message(err)) })
		return
	}

	h.Log.Info("profile name updated", zap.String("user_id", uid.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgNameUpdated)
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// HandlePassword replaces the password after checking the current one.
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	_, _, uid, valid := authz.UserCtx(r)
	if !ok || !valid {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	current := r.FormValue("current")
	next := r.FormValue("password")
	res := inputval.PasswordChange(current, next, r.FormValue("confirm"))
	if res.HasErrors() {
		h.render(w, r, u.Name, func(vm *settingsVM) { vm.setPasswordResult(res) })
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Identity.UpdatePassword(ctx, uid, current, next); err != nil {
		if err != identity.ErrWrongPassword {
			h.ErrLog.Log(r, "update password failed", err)
		}
		h.render(w, r, u.Name, func(vm *settingsVM) { vm.PasswordError = identity.Message(err) })
		return
	}

	h.Log.Info("password updated", zap.String("user_id", uid.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgPasswordUpdated)
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (vm *settingsVM) setPasswordResult(res *inputval.Result) {
	vm.PasswordError = res.First()
	vm.PasswordField = make(map[string]string, len(res.Errors))
	for _, e := range res.Errors {
		if _, seen := vm.PasswordField[e.Field]; !seen {
			vm.PasswordField[e.Field] = e.Message
		}
	}
}
