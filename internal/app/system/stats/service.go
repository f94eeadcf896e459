// Package stats computes the dashboard and student statistics.
//
// Global statistics run as MongoDB aggregation pipelines. Per-user
// statistics reduce in memory over a bounded scan of at most MaxScanRows
// activities. Every statistic returns a Result so an empty collection is
// never confused with a failed query.
package stats

import (
	"context"
	"errors"
	"strings"
	"time"

	activitystore "github.com/dalemusser/stajyerlog/internal/app/store/activities"
	userstore "github.com/dalemusser/stajyerlog/internal/app/store/users"
	"github.com/dalemusser/stajyerlog/internal/app/system/trdate"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	// MaxScanRows bounds the in-memory per-user scan.
	MaxScanRows = 5000
	// MaxTimelineDays bounds Timeline.
	MaxTimelineDays = 90
)

// Result carries a statistic or the reason it could not be computed.
// Err == nil with a zero Value means there was no data.
type Result[T any] struct {
	Value     T
	Err       error
	Truncated bool // the value was computed over a bounded subset
}

// OK reports whether the statistic was computed.
func (r Result[T]) OK() bool { return r.Err == nil }

func ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Service computes statistics over the activity and profile stores.
type Service struct {
	activities *activitystore.Store
	users      *userstore.Store
	loc        *time.Location
	now        func() time.Time
	maxScan    int
	log        *zap.Logger
	onFailure  func(stat string)
}

// New builds a Service. loc is the zone days are counted in.
func New(db *mongo.Database, loc *time.Location, logger *zap.Logger) *Service {
	loc = Zone(loc)
	return &Service{
		activities: activitystore.New(db),
		users:      userstore.New(db),
		loc:        loc,
		now:        time.Now,
		maxScan:    MaxScanRows,
		log:        logger,
	}
}

// OnFailure installs a hook called with the statistic name whenever one
// fails. The metrics layer uses it.
func (s *Service) OnFailure(fn func(stat string)) *Service {
	s.onFailure = fn
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMaxScan lowers the per-user scan bound.
func (s *Service) WithMaxScan(n int) *Service {
	if n > 0 {
		s.maxScan = n
	}
	return s
}

// WithStores swaps the stores. Tests use it to set a small scan page size.
func (s *Service) WithStores(acts *activitystore.Store) *Service {
	s.activities = acts
	return s
}

// Location is the zone statistics are computed in.
func (s *Service) Location() *time.Location { return s.loc }

func fail[T any](s *Service, stat string, err error) Result[T] {
	s.log.Error("statistic failed", zap.String("stat", stat), zap.Error(err))
	if s.onFailure != nil {
		s.onFailure(stat)
	}
	return Result[T]{Err: err}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Global statistics                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// TotalInterns counts intern profiles.
func (s *Service) TotalInterns(ctx context.Context) Result[int64] {
	n, err := s.users.CountByRole(ctx, models.RoleIntern)
	if err != nil {
		return fail[int64](s, "total_interns", err)
	}
	return ok(n)
}

// TotalActivities counts every activity.
func (s *Service) TotalActivities(ctx context.Context) Result[int64] {
	n, err := s.activities.Count(ctx, bson.M{})
	if err != nil {
		return fail[int64](s, "total_activities", err)
	}
	return ok(n)
}

// TodayActiveInterns counts distinct owners of activities dated today or later.
func (s *Service) TodayActiveInterns(ctx context.Context) Result[int64] {
	today := trdate.StartOfDay(s.now(), s.loc)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": today}}}},
		{{Key: "$group", Value: bson.M{"_id": "$user_id"}}},
		{{Key: "$count", Value: "n"}},
	}

	var rows []struct {
		N int64 `bson:"n"`
	}
	if err := s.aggregate(ctx, pipeline, &rows); err != nil {
		return fail[int64](s, "today_active_interns", err)
	}
	if len(rows) == 0 {
		return ok[int64](0)
	}
	return ok(rows[0].N)
}

// MostActiveIntern returns the owner with the most activities. Ties go to
// the lowest user id.
func (s *Service) MostActiveIntern(ctx context.Context) Result[MostActive] {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$user_id", "n": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "n", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 1}},
	}

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
		N  int64              `bson:"n"`
	}
	if err := s.aggregate(ctx, pipeline, &rows); err != nil {
		return fail[MostActive](s, "most_active_intern", err)
	}
	if len(rows) == 0 {
		return ok(NoMostActive())
	}

	best := MostActive{UserID: rows[0].ID, Count: rows[0].N, Name: UnknownName}
	u, err := s.users.GetByUserID(ctx, best.UserID)
	switch {
	case err == nil:
		if n := strings.TrimSpace(u.Name); n != "" {
			best.Name = n
		}
	case !errors.Is(err, userstore.ErrNotFound):
		return fail[MostActive](s, "most_active_intern", err)
	}
	return ok(best)
}

// CategoryDistribution counts activities per category. Blank or missing
// categories count as models.FallbackCategory.
func (s *Service) CategoryDistribution(ctx context.Context) Result[[]CategoryCount] {
	label := bson.M{"$let": bson.M{
		"vars": bson.M{"c": bson.M{"$trim": bson.M{"input": bson.M{"$ifNull": bson.A{"$category", ""}}}}},
		"in": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$$c", ""}},
			models.FallbackCategory,
			"$$c",
		}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": label, "n": bson.M{"$sum": 1}}}},
	}

	var rows []struct {
		Category string `bson:"_id"`
		N        int64  `bson:"n"`
	}
	if err := s.aggregate(ctx, pipeline, &rows); err != nil {
		return fail[[]CategoryCount](s, "category_distribution", err)
	}

	out := make([]CategoryCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryCount{Category: r.Category, Count: r.N})
	}
	SortCategories(out)
	return ok(out)
}

// Timeline counts activities per day over the days ending today. days is
// clamped to [1, MaxTimelineDays].
func (s *Service) Timeline(ctx context.Context, days int) Result[[]Day] {
	days = ClampDays(days)
	now := s.now()
	today := trdate.StartOfDay(now, s.loc)
	from := today.AddDate(0, 0, -(days - 1))
	until := today.AddDate(0, 0, 1)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": from, "$lt": until}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$date",
				"timezone": s.loc.String(),
			}},
			"n": bson.M{"$sum": 1},
		}}},
	}

	var rows []struct {
		Key string `bson:"_id"`
		N   int64  `bson:"n"`
	}
	if err := s.aggregate(ctx, pipeline, &rows); err != nil {
		return fail[[]Day](s, "timeline", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Key] = r.N
	}
	return ok(fillDays(counts, now, days, s.loc))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Per-user statistics                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// Summary is the header of a user's activity list, counted server-side over
// every activity the user owns or takes part in.
type Summary struct {
	Total      int64
	ThisWeek   int64 // dated within the last 7 days
	Categories int   // distinct category labels
}

// SummaryFor counts the user's activities without loading them.
func (s *Service) SummaryFor(ctx context.Context, userID primitive.ObjectID) Result[Summary] {
	filter := activitystore.InvolvingUser(userID)

	total, err := s.activities.Count(ctx, filter)
	if err != nil {
		return fail[Summary](s, "user_summary", err)
	}

	weekStart := trdate.StartOfDay(s.now(), s.loc).AddDate(0, 0, -6)
	week, err := s.activities.Count(ctx, activitystore.And(filter, bson.M{"date": bson.M{"$gte": weekStart}}))
	if err != nil {
		return fail[Summary](s, "user_summary", err)
	}

	raw, err := s.activities.Distinct(ctx, "category", filter)
	if err != nil {
		return fail[Summary](s, "user_summary", err)
	}
	labels := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		c, _ := v.(string)
		labels[models.Activity{Category: c}.CategoryLabel()] = struct{}{}
	}
	return ok(Summary{Total: total, ThisWeek: week, Categories: len(labels)})
}

// UserStats summarizes the activities a user owns or takes part in.
type UserStats struct {
	Activities     []models.Activity // newest first
	Total          int
	ThisWeek       int // dated within the last 7 days
	DistinctCats   int
	Categories     []CategoryCount
	Timeline       []Day
	CommentedCount int
}

// ForUser scans at most the scan bound of the user's activities and reduces
// them. Truncated is set when more activities exist than were scanned.
func (s *Service) ForUser(ctx context.Context, userID primitive.ObjectID, days int) Result[UserStats] {
	res, err := s.activities.Collect(ctx, activitystore.InvolvingUser(userID), s.maxScan)
	if err != nil {
		return fail[UserStats](s, "user_stats", err)
	}

	now := s.now()
	acts := res.Activities
	st := UserStats{
		Activities:   acts,
		Total:        len(acts),
		ThisWeek:     CountSince(acts, now, 7, s.loc),
		DistinctCats: DistinctCategories(acts),
		Categories:   ReduceCategories(acts),
		Timeline:     ReduceTimeline(acts, now, ClampDays(days), s.loc),
	}
	for _, a := range acts {
		if a.HasComment() {
			st.CommentedCount++
		}
	}
	return Result[UserStats]{Value: st, Truncated: res.Truncated}
}

func (s *Service) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := s.activities.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

// Zone returns loc when it carries an IANA name MongoDB can resolve, and
// UTC otherwise. Pipelines and in-memory day keys both use the result, so
// they agree on where a day starts.
func Zone(loc *time.Location) *time.Location {
	if loc == nil || loc == time.Local || loc.String() == "" || loc.String() == "Local" {
		return time.UTC
	}
	return loc
}
