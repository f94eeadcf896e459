// internal/app/system/stats/reduce.go
package stats

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/trdate"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// NoMostActiveName is shown when there are no activities yet.
	NoMostActiveName = "Henüz yok"
	// UnknownName is shown when the top user has no profile.
	UnknownName = "Bilinmeyen"
)

// MostActive is the user with the most activities.
type MostActive struct {
	UserID primitive.ObjectID
	Name   string
	Count  int64
}

// CategoryCount is one row of the category distribution.
type CategoryCount struct {
	Category string
	Count    int64
}

// Day is one timeline bucket.
type Day struct {
	Key   string // yyyy-MM-dd
	Label string // "1 Haz"
	Count int64
}

// NoMostActive is the value reported when nothing was logged yet.
func NoMostActive() MostActive {
	return MostActive{Name: NoMostActiveName}
}

// ReduceMostActive counts activities per owner and returns the highest.
// Ties go to the lowest user id. names supplies display names; owners
// without one are reported as UnknownName.
func ReduceMostActive(acts []models.Activity, names map[primitive.ObjectID]string) MostActive {
	counts := make(map[primitive.ObjectID]int64)
	for _, a := range acts {
		counts[a.UserID]++
	}
	if len(counts) == 0 {
		return NoMostActive()
	}

	var best MostActive
	first := true
	for id, n := range counts {
		if first || n > best.Count || (n == best.Count && lessID(id, best.UserID)) {
			best = MostActive{UserID: id, Count: n}
			first = false
		}
	}
	best.Name = nameOr(names, best.UserID)
	return best
}

// ReduceCategories groups activities by category label. Blank categories
// fall under models.FallbackCategory. Rows are ordered by count, then name.
func ReduceCategories(acts []models.Activity) []CategoryCount {
	counts := make(map[string]int64)
	for _, a := range acts {
		counts[a.CategoryLabel()]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	SortCategories(out)
	return out
}

// SortCategories orders rows by count descending, then category.
func SortCategories(rows []CategoryCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Category < rows[j].Category
	})
}

// ReduceTimeline buckets activities into the days ending today in loc.
// Every day is present, in order, with zero when nothing was logged.
// Activities outside the window are ignored.
func ReduceTimeline(acts []models.Activity, now time.Time, days int, loc *time.Location) []Day {
	counts := make(map[string]int64)
	for _, a := range acts {
		counts[trdate.Key(a.Date, loc)]++
	}
	return fillDays(counts, now, days, loc)
}

// DistinctCategories counts distinct category labels.
func DistinctCategories(acts []models.Activity) int {
	seen := make(map[string]struct{})
	for _, a := range acts {
		seen[a.CategoryLabel()] = struct{}{}
	}
	return len(seen)
}

// CountSince counts activities dated on or after the start of the day that
// is days-1 before now in loc.
func CountSince(acts []models.Activity, now time.Time, days int, loc *time.Location) int {
	if days < 1 {
		return 0
	}
	from := trdate.StartOfDay(now, loc).AddDate(0, 0, -(days - 1))
	n := 0
	for _, a := range acts {
		if !a.Date.Before(from) {
			n++
		}
	}
	return n
}

// ClampDays keeps a timeline length within [1, MaxTimelineDays].
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxTimelineDays {
		return MaxTimelineDays
	}
	return days
}

func fillDays(counts map[string]int64, now time.Time, days int, loc *time.Location) []Day {
	keys := trdate.Keys(now, days, loc)
	out := make([]Day, 0, len(keys))
	for _, k := range keys {
		d := Day{Key: k, Count: counts[k]}
		if t, err := trdate.ParseDay(k, loc); err == nil {
			d.Label = trdate.Short(t, loc)
		}
		out = append(out, d)
	}
	return out
}

func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n := strings.TrimSpace(names[id]); n != "" {
		return n
	}
	return UnknownName
}
