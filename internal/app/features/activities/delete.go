// internal/app/features/activities/delete.go
package activities

import (
	"context"
	"errors"
	"net/http"

	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/navigation"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes an activity the current user created.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.loadOwned(ctx, w, r)
	if !ok {
		return
	}

	back := navigation.SafeBackURL(r, navigation.ActivitiesBackURL)
	err := h.Activities.Delete(ctx, a.ID, a.UserID)
	switch {
	case errors.Is(err, activitystore.ErrNotFound):
		// Already gone; treat as done.
	case err != nil:
		h.ErrLog.Log(r, "delete activity failed", err)
		h.SessionMgr.AddFlash(w, r, auth.FlashError, MsgDeleteFailed)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	h.Log.Info("activity deleted", zap.String("activity_id", a.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgDeleted)
	http.Redirect(w, r, back, http.StatusSeeOther)
}
