// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// SessionGrace is how long an expired session stays in the collection before
// the TTL monitor removes it.
const SessionGrace = 24 * time.Hour

/*
EnsureAll is called at startup. Each collection set is idempotent.
Problems are aggregated so every failing collection is reported at once.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	for _, coll := range []string{"accounts", "users", "activities", "sessions"} {
		if err := EnsureSet(ctx, db.Collection(coll), Desired(coll), logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Desired returns the index set for a collection, or nil for unknown names.
func Desired(coll string) []mongo.IndexModel {
	switch coll {
	case "accounts":
		return []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_accounts_email_ci"),
			},
		}
	case "users":
		return []mongo.IndexModel{
			// One profile per account.
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_user_id"),
			},
			// Intern roster sorted by folded name.
			{
				Keys:    bson.D{{Key: "role", Value: 1}, {Key: "name_ci", Value: 1}},
				Options: options.Index().SetName("idx_users_role_name"),
			},
		}
	case "activities":
		return []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "date", Value: -1}},
				Options: options.Index().SetName("idx_activities_date"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName("idx_activities_user_date"),
			},
			// Multikey: serves "involving user" lists and participation counts.
			{
				Keys:    bson.D{{Key: "participant_ids", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName("idx_activities_participants_date"),
			},
		}
	case "sessions":
		return []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "logout_at", Value: 1}},
				Options: options.Index().SetName("idx_sessions_user_open"),
			},
			// At most one open session per user, even under concurrent logins.
			{
				Keys: bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_sessions_user_open").
					SetPartialFilterExpression(bson.M{"open": true}),
			},
			{
				Keys: bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("ttl_sessions_expires").
					SetExpireAfterSeconds(int32(SessionGrace.Seconds())),
			},
		}
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(p *bool) bool { return p != nil && *p }

// Best-effort duplicate detector.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// EnsureSet makes coll carry every index in desired. An existing index with
// the same keys is reused when its uniqueness matches, and dropped and
// recreated under the desired name otherwise.
func EnsureSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing collection lists nothing; CreateOne creates it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)),
		}

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) && (name == "" || ex.Name == name) {
				logger.Debug("reusing existing index", fields...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				logger.Warn("drop existing index failed", append(fields, zap.String("existing", ex.Name), zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			logger.Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		logger.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
