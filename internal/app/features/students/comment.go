// internal/app/features/students/comment.go
package students

import (
	"context"
	"errors"
	"net/http"
	"slices"

	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleComment stores the manager's comment on one of the intern's
// activities. An empty comment clears it.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.loadIntern(ctx, w, r)
	if !ok {
		return
	}
	back := "/students/" + u.UserID.Hex()

	activityID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "activityID"))
	if err != nil {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, MsgActivityAbsent)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	a, err := h.Activities.GetByID(ctx, activityID)
	if err == nil && !slices.Contains(a.Participants(), u.UserID) {
		err = activitystore.ErrNotFound
	}
	if errors.Is(err, activitystore.ErrNotFound) {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, MsgActivityAbsent)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if err == nil {
		err = h.Activities.SetComment(ctx, activityID, r.FormValue("comment"))
	}
	if err != nil {
		h.ErrLog.Log(r, "save comment failed", err)
		h.SessionMgr.AddFlash(w, r, auth.FlashError, MsgCommentFailed)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	h.Log.Info("comment saved",
		zap.String("activity_id", activityID.Hex()),
		zap.String("student_id", u.UserID.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgCommentSaved)
	http.Redirect(w, r, back+"#activity-"+activityID.Hex(), http.StatusSeeOther)
}
