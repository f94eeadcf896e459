// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/indexes"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no open session matches.
var ErrNotFound = errors.New("session not found")

// touchEvery throttles last_active_at writes.
const touchEvery = time.Minute

// Store manages server-side login sessions.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions"), now: func() time.Time { return time.Now().UTC() }}
}

// EnsureIndexes creates the lookup index and a TTL index that lets MongoDB
// drop sessions a day after they expire.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.EnsureSet(ctx, s.c, indexes.Desired("sessions"), nil)
}

// createAttempts bounds the close-then-insert retries of Create.
const createAttempts = 5

// closeUpdate ends a session with reason at now.
func closeUpdate(now time.Time, reason string) bson.M {
	return bson.M{
		"$set":   bson.M{"logout_at": now, "end_reason": reason},
		"$unset": bson.M{"open": ""},
	}
}

// Create closes every open session of the user and opens a new one.
// After it returns the user has exactly one open session. A concurrent
// login that slips in between is closed on the next attempt.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, ip, userAgent string, ttl time.Duration) (models.Session, error) {
	for attempt := 1; ; attempt++ {
		now := s.now()
		if _, err := s.c.UpdateMany(ctx,
			bson.M{"user_id": userID, "logout_at": nil},
			closeUpdate(now, models.EndReasonReplaced),
		); err != nil {
			return models.Session{}, err
		}

		sess := models.Session{
			ID:           primitive.NewObjectID(),
			UserID:       userID,
			LoginAt:      now,
			LastActiveAt: now,
			ExpiresAt:    now.Add(ttl),
			IP:           ip,
			UserAgent:    userAgent,
			Open:         true,
		}
		_, err := s.c.InsertOne(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if !mongo.IsDuplicateKeyError(err) || attempt >= createAttempts {
			return models.Session{}, err
		}
	}
}

// GetOpen returns the session if it belongs to userID, is not closed and
// has not expired.
func (s *Store) GetOpen(ctx context.Context, sessionID, userID primitive.ObjectID) (*models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{
		"_id":        sessionID,
		"user_id":    userID,
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Touch records activity on an open session, at most once per minute.
func (s *Store) Touch(ctx context.Context, sess models.Session) error {
	now := s.now()
	if now.Sub(sess.LastActiveAt) < touchEvery {
		return nil
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": sess.ID, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": now}},
	)
	return err
}

// Close ends a session. Closing an already closed session is a no-op.
func (s *Store) Close(ctx context.Context, sessionID primitive.ObjectID, reason string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": sessionID, "logout_at": nil},
		closeUpdate(s.now(), reason),
	)
	return err
}

// CountOpen counts the user's open sessions.
func (s *Store) CountOpen(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"logout_at":  nil,
		"expires_at": bson.M{"$gt": s.now()},
	})
}
