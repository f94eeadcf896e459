// internal/app/features/activities/form.go
package activities

import (
	"context"
	"net/http"
	"strings"

	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	"github.com/dalemusser/stajyerlog/internal/app/system/formutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/trdate"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type internOption struct {
	ID       string
	Name     string
	Selected bool
}

type formData struct {
	formutil.Base
	Heading     string
	Action      string
	Submit      string
	Category    string
	Description string
	Date        string
	MinDate     string
	MaxDate     string
	Categories  []string
	Interns     []internOption
}

// submission is the posted form before validation.
type submission struct {
	Category     string
	Description  string
	Date         string
	Participants []primitive.ObjectID
}

func parseSubmission(r *http.Request) submission {
	s := submission{
		Category:    strings.TrimSpace(r.FormValue("category")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Date:        strings.TrimSpace(r.FormValue("date")),
	}
	for _, v := range r.Form["participants"] {
		if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(v)); err == nil {
			s.Participants = append(s.Participants, id)
		}
	}
	return s
}

func (s submission) selected() map[primitive.ObjectID]bool {
	out := make(map[primitive.ObjectID]bool, len(s.Participants))
	for _, id := range s.Participants {
		out[id] = true
	}
	return out
}

// renderForm fills the intern picker and renders the activity form. The
// viewer is left out of the picker since the owner always takes part.
func (h *Handler) renderForm(ctx context.Context, w http.ResponseWriter, r *http.Request, data formData, viewer primitive.ObjectID, sub submission, res *inputval.Result) {
	data.Category = sub.Category
	data.Description = sub.Description
	data.Date = sub.Date
	data.MinDate = inputval.EarliestActivityDate.Format(trdate.KeyLayout)
	data.MaxDate = trdate.Key(h.now(), h.Loc)
	data.Categories = models.ActivityCategories

	interns, err := h.Identity.ListInterns(ctx)
	if err != nil {
		// The form still works without the picker.
		h.ErrLog.Log(r, "list interns for picker failed", err)
	}
	picked := sub.selected()
	for _, u := range interns {
		if u.UserID == viewer {
			continue
		}
		data.Interns = append(data.Interns, internOption{
			ID:       u.UserID.Hex(),
			Name:     u.Name,
			Selected: picked[u.UserID],
		})
	}

	if res != nil {
		data.SetResult(res)
	}
	templates.Render(w, r, "activity_form", data)
}

// resolveParticipants keeps the owner plus the picked ids that belong to a
// known profile, and returns their names in the same order.
func (h *Handler) resolveParticipants(ctx context.Context, owner models.User, picked []primitive.ObjectID) ([]primitive.ObjectID, []string, error) {
	ids := activitystore.WithOwner(owner.UserID, picked)
	profiles, err := h.Identity.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	outIDs := []primitive.ObjectID{owner.UserID}
	names := []string{owner.Name}
	if p, ok := profiles[owner.UserID]; ok {
		names[0] = p.Name
	}
	for _, id := range ids {
		p, ok := profiles[id]
		if !ok || id == owner.UserID {
			continue
		}
		outIDs = append(outIDs, id)
		names = append(names, p.Name)
	}
	return outIDs, names, nil
}
