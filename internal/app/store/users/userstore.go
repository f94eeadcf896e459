// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/indexes"
	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no profile exists for a user id.
	ErrNotFound = errors.New("profile not found")
	// ErrDuplicateProfile is returned when a profile already exists for the user id.
	ErrDuplicateProfile = errors.New("profile already exists for user")

	errBadRole   = errors.New(`role must be "stajyer"|"yonetici"`)
	errNoName    = errors.New("name is required")
	errNoAccount = errors.New("user_id is required")
)

// Store reads and writes profiles (the users collection).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique user_id index and the role/name index
// used by the intern roster.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.EnsureSet(ctx, s.c, indexes.Desired("users"), nil)
}

// Create inserts a profile after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)

	switch {
	case u.UserID.IsZero():
		return models.User{}, errNoAccount
	case u.Name == "":
		return models.User{}, errNoName
	case !models.IsValidRole(u.Role):
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateProfile
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByUserID loads the profile for an account id.
// Returns ErrNotFound when no profile document exists.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateName changes the display name. It is the only profile mutation.
func (s *Store) UpdateName(ctx context.Context, userID primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	if name == "" {
		return errNoName
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRole returns profiles with the given role sorted by name.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"role": normalize.Role(role)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByRole counts profiles with the given role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": normalize.Role(role)})
}

// GetByUserIDs returns profiles keyed by user id. Unknown ids are absent
// from the map.
func (s *Store) GetByUserIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.UserID] = u
	}
	return out, cur.Err()
}
