// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/activityview"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/paging"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/viewdata"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	// ManagerCap is how many of the newest commented activities a manager
	// can page through.
	ManagerCap = 100

	MsgLoadFailed = "Bildirimler yüklenemedi"
)

// Handler lists activities that carry a manager comment.
type Handler struct {
	Activities *activitystore.Store
	Identity   *identity.Service
	Loc        *time.Location
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, idSvc *identity.Service, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Activities: activitystore.New(db),
		Identity:   idSvc,
		Loc:        loc,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type listData struct {
	viewdata.BaseVM
	Rows  []activityview.Row
	Range paging.Range
}

// ServeList shows managers every commented activity, newest first and
// bounded by ManagerCap. Interns see comments on activities they own or
// take part in.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	manager := authz.IsManager(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page := paging.FromRequest(r)
	filter := activitystore.InvolvingUser(uid)
	limit := page.LimitPlusOne()
	if manager {
		filter = bson.M{}
		limit = capLimit(page, ManagerCap)
	}

	var acts []models.Activity
	if limit > 0 {
		var err error
		acts, err = h.Activities.ListCommented(ctx, filter, limit, page.Offset())
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list notifications failed", err, MsgLoadFailed, "/")
			return
		}
	}
	acts, more := paging.Trim(acts, page)

	var names activityview.Names
	if manager {
		profiles, err := h.Identity.ProfilesByIDs(ctx, activityview.IDs(acts))
		if err != nil {
			h.Log.Warn("resolve notification names failed", zap.Error(err))
		} else {
			names = activityview.NamesFrom(profiles)
		}
	}

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Bildirimler", "/"),
		Rows:   activityview.Rows(acts, uid, h.Loc, names),
		Range:  paging.ComputeRange(page, len(acts), more),
	}
	templates.Render(w, r, "notifications_list", data)
}

// capLimit returns the look-ahead fetch size for page so that no row past
// the first capRows rows is ever read. Zero means the page lies past the cap.
func capLimit(page paging.Page, capRows int) int {
	remaining := capRows - page.Offset()
	if remaining <= 0 {
		return 0
	}
	if limit := page.LimitPlusOne(); limit < remaining {
		return limit
	}
	return remaining
}
