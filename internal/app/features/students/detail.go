// internal/app/features/students/detail.go
package students

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stajyerlog/internal/app/features/errors"
	"github.com/dalemusser/stajyerlog/internal/app/system/activityview"
	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/dalemusser/stajyerlog/internal/app/system/identity"
	"github.com/dalemusser/stajyerlog/internal/app/system/paging"
	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/viewdata"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type detailData struct {
	viewdata.BaseVM
	StudentID    string
	StudentName  string
	StudentEmail string
	Initials     string
	Cards        []activityview.Card
	Categories   []stats.CategoryCount
	Timeline     []stats.Day
	Rows         []activityview.Row
	Range        paging.Range
	Truncated    bool
	Scanned      int
}

// loadIntern resolves {id} to an intern profile, writing the error page
// when it cannot.
func (h *Handler) loadIntern(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, MsgInvalidID, "/students")
		return nil, false
	}
	u, err := h.Identity.GetUserProfile(ctx, id)
	if err == identity.ErrProfileNotFound {
		uierrors.RenderNotFound(w, r, MsgNotFound, "/students")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load intern profile failed", err, MsgDetailFailed, "/students")
		return nil, false
	}
	if u.Role != models.RoleIntern {
		uierrors.RenderNotFound(w, r, MsgNotFound, "/students")
		return nil, false
	}
	return u, true
}

// ServeDetail renders one intern's statistics and a page of their
// activities with a comment form per activity. Statistics cover every
// scanned activity, not only the page shown.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, ok := h.loadIntern(ctx, w, r)
	if !ok {
		return
	}

	res := h.Stats.ForUser(ctx, u.UserID, DetailTimelineDays)
	if !res.OK() {
		h.ErrLog.LogServerError(w, r, "intern statistics failed", res.Err, MsgDetailFailed, "/students")
		return
	}
	st := res.Value
	page := paging.FromRequest(r)
	acts, more := paging.Slice(st.Activities, page)

	data := detailData{
		BaseVM:       viewdata.NewBaseVM(r, u.Name, "/students"),
		StudentID:    u.UserID.Hex(),
		StudentName:  u.Name,
		StudentEmail: u.Email,
		Initials:     viewdata.Initials(u.Name),
		Cards: []activityview.Card{
			{Label: "Toplam Aktivite", Value: itoa(st.Total)},
			{Label: "Bu Hafta", Value: itoa(st.ThisWeek), Hint: "Son 7 gün"},
			{Label: "Kategori", Value: itoa(st.DistinctCats)},
			{Label: "Yorumlanan", Value: itoa(st.CommentedCount)},
		},
		Categories: st.Categories,
		Timeline:   st.Timeline,
		Rows:       activityview.Rows(acts, authz.UserID(r), h.Stats.Location(), nil),
		Range:      paging.ComputeRange(page, len(acts), more),
		Truncated:  res.Truncated,
		Scanned:    len(st.Activities),
	}
	templates.Render(w, r, "student_detail", data)
}
