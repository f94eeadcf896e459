// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/activityview"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/viewdata"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// TimelineDays is the width of the dashboard timeline.
	TimelineDays = 7
	// RecentLimit is how many of the newest activities are listed.
	RecentLimit = 10
)

type Handler struct {
	Activities *activitystore.Store
	Identity   *identity.Service
	Stats      *stats.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, idSvc *identity.Service, statsSvc *stats.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Activities: activitystore.New(db),
		Identity:   idSvc,
		Stats:      statsSvc,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type dashboardData struct {
	viewdata.BaseVM

	Cards        []activityview.Card
	Categories   []stats.CategoryCount
	CategoryErr  bool
	Timeline     []stats.Day
	TimelineErr  bool
	Recent       []activityview.Row
	RecentFailed bool
}

// overview holds every statistic of the page. Each one fails on its own.
type overview struct {
	interns    stats.Result[int64]
	todayAct   stats.Result[int64]
	activities stats.Result[int64]
	mostActive stats.Result[stats.MostActive]
	categories stats.Result[[]stats.CategoryCount]
	timeline   stats.Result[[]stats.Day]
	recent     []models.Activity
	recentErr  error
	names      activityview.Names
}

// load runs the independent queries concurrently. Failures are carried in
// each Result rather than cancelling the others.
func (h *Handler) load(ctx context.Context) overview {
	var ov overview
	var g errgroup.Group

	g.Go(func() error { ov.interns = h.Stats.TotalInterns(ctx); return nil })
	g.Go(func() error { ov.todayAct = h.Stats.TodayActiveInterns(ctx); return nil })
	g.Go(func() error { ov.activities = h.Stats.TotalActivities(ctx); return nil })
	g.Go(func() error { ov.mostActive = h.Stats.MostActiveIntern(ctx); return nil })
	g.Go(func() error { ov.categories = h.Stats.CategoryDistribution(ctx); return nil })
	g.Go(func() error { ov.timeline = h.Stats.Timeline(ctx, TimelineDays); return nil })
	g.Go(func() error {
		ov.recent, ov.recentErr = h.Activities.ListAll(ctx, RecentLimit, 0)
		if ov.recentErr != nil {
			return nil
		}
		profiles, err := h.Identity.ProfilesByIDs(ctx, activityview.IDs(ov.recent))
		if err != nil {
			// Fall back to the names stored on each activity.
			h.Log.Warn("resolve recent activity names failed", zap.Error(err))
			return nil
		}
		ov.names = activityview.NamesFrom(profiles)
		return nil
	})
	_ = g.Wait()
	return ov
}

// ServeDashboard renders the manager overview.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, uname, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	start := time.Now()
	ov := h.load(ctx)

	if ov.recentErr != nil {
		h.ErrLog.Log(r, "list recent activities failed", ov.recentErr)
	}

	data := dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
		Cards: []activityview.Card{
			activityview.CountCard("Toplam Stajyer", ov.interns),
			activityview.CountCard("Bugün Aktif", ov.todayAct),
			activityview.CountCard("Toplam Aktivite", ov.activities),
			activityview.MostActiveCard("En Aktif Stajyer", ov.mostActive),
		},
		Categories:   ov.categories.Value,
		CategoryErr:  !ov.categories.OK(),
		Timeline:     ov.timeline.Value,
		TimelineErr:  !ov.timeline.OK(),
		Recent:       activityview.Rows(ov.recent, uid, h.Stats.Location(), ov.names),
		RecentFailed: ov.recentErr != nil,
	}

	h.Log.Debug("manager dashboard served",
		zap.String("user", uname),
		zap.Duration("took", time.Since(start)))

	templates.Render(w, r, "manager_dashboard", data)
}
