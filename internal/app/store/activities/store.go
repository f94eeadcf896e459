// internal/app/store/activities/store.go
package activitystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/indexes"
	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultLimit is used when a caller passes limit <= 0.
	DefaultLimit = 100
	// MaxLimit caps a single List call.
	MaxLimit = 500
	// ScanPageSize is the batch size Collect reads per round trip.
	ScanPageSize = 200
)

var (
	// ErrNotFound is returned when the activity does not exist, or when an
	// owner-scoped write does not match the owner.
	ErrNotFound = errors.New("activity not found")

	ErrMissingOwner       = errors.New("activity owner is required")
	ErrMissingCategory    = errors.New("activity category is required")
	ErrMissingDescription = errors.New("activity description is required")
	ErrMissingDate        = errors.New("activity date is required")
)

// Store reads and writes the activities collection.
type Store struct {
	c        *mongo.Collection
	pageSize int64
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activities"), pageSize: ScanPageSize}
}

// WithScanPageSize returns a copy of the store that reads Collect batches
// of n documents.
func (s *Store) WithScanPageSize(n int) *Store {
	cp := *s
	if n > 0 {
		cp.pageSize = int64(n)
	}
	return &cp
}

// EnsureIndexes creates the indexes used by list and statistics queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.EnsureSet(ctx, s.c, indexes.Desired("activities"), nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Writes                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Create inserts a new activity. ParticipantIDs is rewritten to the unique
// set of the owner plus the given ids, owner first.
func (s *Store) Create(ctx context.Context, a models.Activity) (models.Activity, error) {
	a.Category = normalize.Name(a.Category)
	a.Description = normalize.Text(a.Description)
	a.ManagerComment = ""
	if err := validate(a); err != nil {
		return models.Activity{}, err
	}

	a.ID = primitive.NewObjectID()
	a.ParticipantIDs = WithOwner(a.UserID, a.ParticipantIDs)
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// Update holds the editable fields. Owner fields are never part of it.
type Update struct {
	Category         string
	Description      string
	Date             time.Time
	ParticipantIDs   []primitive.ObjectID
	ParticipantNames []string
}

// Update rewrites the editable fields of an activity owned by ownerID.
// Returns ErrNotFound when the activity does not exist or is not owned
// by ownerID.
func (s *Store) Update(ctx context.Context, id, ownerID primitive.ObjectID, upd Update) error {
	probe := models.Activity{
		UserID:      ownerID,
		Category:    normalize.Name(upd.Category),
		Description: normalize.Text(upd.Description),
		Date:        upd.Date,
	}
	if err := validate(probe); err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": ownerID},
		bson.M{"$set": bson.M{
			"category":          probe.Category,
			"description":       probe.Description,
			"date":              upd.Date,
			"participant_ids":   WithOwner(ownerID, upd.ParticipantIDs),
			"participant_names": upd.ParticipantNames,
			"updated_at":        time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an activity owned by ownerID.
func (s *Store) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetComment stores a trimmed manager comment. An empty comment removes it.
// Concurrent comments are last-write-wins.
func (s *Store) SetComment(ctx context.Context, id primitive.ObjectID, comment string) error {
	comment = normalize.Text(comment)

	update := bson.M{"$set": bson.M{"manager_comment": comment, "updated_at": time.Now().UTC()}}
	if comment == "" {
		update = bson.M{
			"$unset": bson.M{"manager_comment": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// GetByID loads one activity.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	var a models.Activity
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// InvolvingUser matches activities owned by or shared with userID.
func InvolvingUser(userID primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"user_id": userID},
		bson.M{"participant_ids": userID},
	}}
}

// Commented matches activities with a non-blank manager comment.
func Commented() bson.M {
	return bson.M{"manager_comment": bson.M{"$regex": `\S`}}
}

// ListByUser returns the newest activities owned by or shared with userID.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error) {
	return s.List(ctx, InvolvingUser(userID), limit, 0)
}

// ListAll returns a page of all activities, newest first.
func (s *Store) ListAll(ctx context.Context, limit, offset int) ([]models.Activity, error) {
	return s.List(ctx, bson.M{}, limit, offset)
}

// ListCommented returns commented activities matching filter, newest first.
func (s *Store) ListCommented(ctx context.Context, filter bson.M, limit, offset int) ([]models.Activity, error) {
	return s.List(ctx, And(filter, Commented()), limit, offset)
}

// List runs a caller-supplied filter ordered by date descending.
func (s *Store) List(ctx context.Context, filter bson.M, limit, offset int) ([]models.Activity, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().
		SetSort(sortNewest()).
		SetLimit(int64(clampLimit(limit)))
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Activity, 0, 16)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts activities matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.c.CountDocuments(ctx, filter)
}

// CollectResult is the output of Collect.
type CollectResult struct {
	Activities []models.Activity
	Truncated  bool // more documents matched than maxRows
}

// Collect pages through every activity matching filter, newest first, in
// batches of the store's scan page size, and stops after maxRows documents.
// Truncated reports whether at least one more document matched.
//
// Batches are keyed on (date, _id) rather than skip so that the scan cost
// stays linear in maxRows.
func (s *Store) Collect(ctx context.Context, filter bson.M, maxRows int) (CollectResult, error) {
	var res CollectResult
	if maxRows <= 0 {
		return res, nil
	}
	if filter == nil {
		filter = bson.M{}
	}

	var last *models.Activity
	for len(res.Activities) < maxRows {
		want := int64(maxRows - len(res.Activities))
		if want > s.pageSize {
			want = s.pageSize
		}

		q := filter
		if last != nil {
			q = And(filter, after(*last))
		}
		opts := options.Find().SetSort(sortNewest()).SetLimit(want)

		cur, err := s.c.Find(ctx, q, opts)
		if err != nil {
			return CollectResult{}, err
		}
		var batch []models.Activity
		err = cur.All(ctx, &batch)
		cur.Close(ctx)
		if err != nil {
			return CollectResult{}, err
		}

		res.Activities = append(res.Activities, batch...)
		if int64(len(batch)) < want {
			return res, nil
		}
		last = &batch[len(batch)-1]
	}

	// Bound reached: probe for one more document.
	n, err := s.c.CountDocuments(ctx, And(filter, after(*last)), options.Count().SetLimit(1))
	if err != nil {
		return CollectResult{}, err
	}
	res.Truncated = n > 0
	return res, nil
}

// ParticipationCounts returns, per participant, the number of activities
// the user took part in (owned or shared).
func (s *Store) ParticipationCounts(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"p": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{bson.M{"$size": bson.M{"$ifNull": bson.A{"$participant_ids", bson.A{}}}}, 0}},
				"$participant_ids",
				bson.A{"$user_id"},
			}},
		}}},
		{{Key: "$unwind", Value: "$p"}},
		{{Key: "$group", Value: bson.M{"_id": "$p", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[primitive.ObjectID]int64)
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int64              `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.N
	}
	return out, cur.Err()
}

// Aggregate runs a statistics pipeline against the collection.
func (s *Store) Aggregate(ctx context.Context, pipeline mongo.Pipeline) (*mongo.Cursor, error) {
	return s.c.Aggregate(ctx, pipeline)
}

// Distinct returns the distinct values of field among matching activities.
func (s *Store) Distinct(ctx context.Context, field string, filter bson.M) ([]interface{}, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return s.c.Distinct(ctx, field, filter)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// WithOwner returns the unique ids of owner followed by ids, preserving
// first-seen order.
func WithOwner(owner primitive.ObjectID, ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids)+1)
	out := make([]primitive.ObjectID, 0, len(ids)+1)
	for _, id := range append([]primitive.ObjectID{owner}, ids...) {
		if id.IsZero() {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// And combines filters; empty filters are dropped.
func And(filters ...bson.M) bson.M {
	parts := bson.A{}
	for _, f := range filters {
		if len(f) > 0 {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}
	return bson.M{"$and": parts}
}

func validate(a models.Activity) error {
	switch {
	case a.UserID.IsZero():
		return ErrMissingOwner
	case strings.TrimSpace(a.Category) == "":
		return ErrMissingCategory
	case strings.TrimSpace(a.Description) == "":
		return ErrMissingDescription
	case a.Date.IsZero():
		return ErrMissingDate
	}
	return nil
}

func sortNewest() bson.D {
	return bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}
}

// after matches documents that sort strictly after a under sortNewest.
func after(a models.Activity) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"date": bson.M{"$lt": a.Date}},
		bson.M{"date": a.Date, "_id": bson.M{"$lt": a.ID}},
	}}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
