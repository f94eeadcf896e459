// internal/app/features/activities/edit.go
package activities

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/formutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/navigation"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/trdate"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// loadOwned resolves {id} to an activity the current user created. It
// writes the error page and returns false otherwise.
func (h *Handler) loadOwned(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Activity, bool) {
	if _, _, _, ok := authz.UserCtx(r); !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return nil, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, inputval.MsgInvalidActivityID, "/activities")
		return nil, false
	}

	a, err := h.Activities.GetByID(ctx, id)
	if errors.Is(err, activitystore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, MsgNotFound, "/activities")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load activity failed", err, MsgLoadFailed, "/activities")
		return nil, false
	}

	if !authz.IsOwner(r, *a) {
		h.ErrLog.LogForbidden(w, r, "activity change by non-owner", nil, MsgNotOwner, "/activities")
		return nil, false
	}
	return a, true
}

func editFormData(r *http.Request, a *models.Activity) formData {
	data := formData{
		Heading: "Aktiviteyi Düzenle",
		Action:  "/activities/" + a.ID.Hex() + "/edit",
		Submit:  "Güncelle",
	}
	formutil.SetBase(&data.Base, r, "Aktiviteyi Düzenle", "/activities")
	return data
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /activities/{id}/edit                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadOwned(ctx, w, r)
	if !ok {
		return
	}

	sub := submission{
		Category:     a.Category,
		Description:  a.Description,
		Date:         trdate.Key(a.Date, h.Loc),
		Participants: a.Participants(),
	}
	h.renderForm(ctx, w, r, editFormData(r, a), a.UserID, sub, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /activities/{id}/edit                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Geçersiz form verisi.", "/activities")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, ok := h.loadOwned(ctx, w, r)
	if !ok {
		return
	}

	sub := parseSubmission(r)
	day, res := inputval.Activity(sub.Category, sub.Description, sub.Date, h.Loc, h.now())
	if res.HasErrors() {
		h.renderForm(ctx, w, r, editFormData(r, a), a.UserID, sub, res)
		return
	}

	// Ownership fields stay as they were written at creation.
	owner := models.User{UserID: a.UserID, Name: a.UserName}
	ids, names, err := h.resolveParticipants(ctx, owner, sub.Participants)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve participants failed", err, MsgUpdateFailed, "/activities")
		return
	}

	err = h.Activities.Update(ctx, a.ID, a.UserID, activitystore.Update{
		Category:         sub.Category,
		Description:      sub.Description,
		Date:             day,
		ParticipantIDs:   ids,
		ParticipantNames: names,
	})
	if errors.Is(err, activitystore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, MsgNotFound, "/activities")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update activity failed", err, MsgUpdateFailed, "/activities")
		return
	}

	h.Log.Info("activity updated", zap.String("activity_id", a.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgUpdated)
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.ActivitiesBackURL), http.StatusSeeOther)
}
