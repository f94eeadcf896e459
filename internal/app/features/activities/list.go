// internal/app/features/activities/list.go
package activities

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/activityview"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/paging"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type listData struct {
	viewdata.BaseVM
	Cards []activityview.Card
	Rows  []activityview.Row
	Range paging.Range
}

// ServeList renders the activities the user owns or takes part in, newest
// first, with summary cards counted over all of them.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page := paging.FromRequest(r)
	acts, err := h.Activities.List(ctx, activitystore.InvolvingUser(uid), page.LimitPlusOne(), page.Offset())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list activities failed", err, MsgLoadFailed, "/")
		return
	}
	acts, more := paging.Trim(acts, page)

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Aktivitelerim", "/"),
		Cards:  activityview.SummaryCards(h.Stats.SummaryFor(ctx, uid)),
		Rows:   activityview.Rows(acts, uid, h.Loc, nil),
		Range:  paging.ComputeRange(page, len(acts), more),
	}
	templates.Render(w, r, "activities_list", data)
}
