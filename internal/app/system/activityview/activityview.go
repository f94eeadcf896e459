// Package activityview turns activities and statistics into the row and
// card values the page templates render.
package activityview

import (
	"strconv"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/stats"
	"github.com/dalemusser/stajyerlog/internal/app/system/trdate"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Row is one rendered activity.
type Row struct {
	ID           string
	Date         string // "1 Haziran 2024"
	DateKey      string // "2024-06-01"
	Category     string
	Description  string
	Participants []string
	OwnerID      string
	OwnerName    string
	Comment      string
	IsOwner      bool // the viewer created it and may edit or delete it
}

// Shared reports whether anyone besides the owner takes part.
func (r Row) Shared() bool { return len(r.Participants) > 1 }

// Names maps user ids to display names. A nil Names uses the names stored
// on each activity.
type Names map[primitive.ObjectID]string

// NamesFrom builds Names from loaded profiles.
func NamesFrom(profiles map[primitive.ObjectID]models.User) Names {
	out := make(Names, len(profiles))
	for id, u := range profiles {
		out[id] = u.Name
	}
	return out
}

// IDs returns every owner and participant id in acts, without duplicates.
func IDs(acts []models.Activity) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{})
	var out []primitive.ObjectID
	for _, a := range acts {
		for _, id := range append([]primitive.ObjectID{a.UserID}, a.Participants()...) {
			if _, ok := seen[id]; ok || id.IsZero() {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Rows renders acts for viewer. Dates are shown in loc.
func Rows(acts []models.Activity, viewer primitive.ObjectID, loc *time.Location, names Names) []Row {
	rows := make([]Row, 0, len(acts))
	for _, a := range acts {
		rows = append(rows, row(a, viewer, loc, names))
	}
	return rows
}

func row(a models.Activity, viewer primitive.ObjectID, loc *time.Location, names Names) Row {
	r := Row{
		ID:          a.ID.Hex(),
		Date:        trdate.Long(a.Date, loc),
		DateKey:     trdate.Key(a.Date, loc),
		Category:    a.CategoryLabel(),
		Description: a.Description,
		OwnerID:     a.UserID.Hex(),
		OwnerName:   a.UserName,
		Comment:     a.ManagerComment,
		IsOwner:     a.IsOwnedBy(viewer),
	}

	if names == nil {
		r.Participants = a.ParticipantNames
		return r
	}
	if n, ok := names[a.UserID]; ok {
		r.OwnerName = n
	}
	for _, id := range a.Participants() {
		if n, ok := names[id]; ok {
			r.Participants = append(r.Participants, n)
		}
	}
	return r
}

// Card is a headline number. A failed statistic renders "veri alınamadı".
type Card struct {
	Label  string
	Value  string
	Hint   string
	Failed bool
}

// CountCard renders a counted statistic.
func CountCard(label string, res stats.Result[int64]) Card {
	if !res.OK() {
		return Card{Label: label, Failed: true}
	}
	return Card{Label: label, Value: strconv.FormatInt(res.Value, 10)}
}

// MostActiveCard renders the most active intern with their count as hint.
func MostActiveCard(label string, res stats.Result[stats.MostActive]) Card {
	if !res.OK() {
		return Card{Label: label, Failed: true}
	}
	return Card{
		Label: label,
		Value: res.Value.Name,
		Hint:  strconv.FormatInt(res.Value.Count, 10) + " aktivite",
	}
}

// SummaryCards renders the three headline cards above a user's list.
func SummaryCards(res stats.Result[stats.Summary]) []Card {
	if !res.OK() {
		return []Card{
			{Label: "Toplam Aktivite", Failed: true},
			{Label: "Bu Hafta", Failed: true},
			{Label: "Kategori", Failed: true},
		}
	}
	s := res.Value
	return []Card{
		{Label: "Toplam Aktivite", Value: strconv.FormatInt(s.Total, 10)},
		{Label: "Bu Hafta", Value: strconv.FormatInt(s.ThisWeek, 10), Hint: "Son 7 gün"},
		{Label: "Kategori", Value: strconv.Itoa(s.Categories)},
	}
}
