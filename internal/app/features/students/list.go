// internal/app/features/students/list.go
package students

import (
	"context"
	"net/http"

	"github.com/dalemusser/stajyerlog/internal/app/system/timeouts"
	"github.com/dalemusser/stajyerlog/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type studentRow struct {
	ID       string
	Name     string
	Email    string
	Initials string
	Count    int64
}

type listData struct {
	viewdata.BaseVM
	Rows         []studentRow
	CountsFailed bool
}

// ServeList renders every intern with the number of activities they own or
// take part in.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	interns, err := h.Identity.ListInterns(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list interns failed", err, MsgListFailed, "/dashboard")
		return
	}

	counts, err := h.Activities.ParticipationCounts(ctx)
	if err != nil {
		h.ErrLog.Log(r, "participation counts failed", err)
	}

	data := listData{
		BaseVM:       viewdata.NewBaseVM(r, "Tüm Stajyerler", "/dashboard"),
		CountsFailed: err != nil,
	}
	for _, u := range interns {
		data.Rows = append(data.Rows, studentRow{
			ID:       u.UserID.Hex(),
			Name:     u.Name,
			Email:    u.Email,
			Initials: viewdata.Initials(u.Name),
			Count:    counts[u.UserID],
		})
	}
	templates.Render(w, r, "students_list", data)
}
