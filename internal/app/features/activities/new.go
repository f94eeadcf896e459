// internal/app/features/activities/new.go
package activities

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/formutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/navigation"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/trdate"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.uber.org/zap"
)

func newFormData(r *http.Request) formData {
	data := formData{Heading: "Yeni Aktivite", Action: "/activities/new", Submit: "Kaydet"}
	formutil.SetBase(&data.Base, r, "Yeni Aktivite", "/activities")
	return data
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /activities/new                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub := submission{Date: trdate.Key(h.now(), h.Loc)}
	h.renderForm(ctx, w, r, newFormData(r), uid, sub, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /activities/new                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	_, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Geçersiz form verisi.", "/activities")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sub := parseSubmission(r)
	day, res := inputval.Activity(sub.Category, sub.Description, sub.Date, h.Loc, h.now())
	if res.HasErrors() {
		h.renderForm(ctx, w, r, newFormData(r), uid, sub, res)
		return
	}

	owner := models.User{UserID: uid, Name: name}
	ids, names, err := h.resolveParticipants(ctx, owner, sub.Participants)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve participants failed", err, MsgCreateFailed, "/activities")
		return
	}

	created, err := h.Activities.Create(ctx, models.Activity{
		UserID:           uid,
		UserName:         names[0],
		Category:         sub.Category,
		Description:      sub.Description,
		Date:             day,
		ParticipantIDs:   ids,
		ParticipantNames: names,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create activity failed", err, MsgCreateFailed, "/activities")
		return
	}

	h.Log.Info("activity created",
		zap.String("activity_id", created.ID.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.Int("participants", len(ids)))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgCreated)
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.ActivitiesBackURL), http.StatusSeeOther)
}
