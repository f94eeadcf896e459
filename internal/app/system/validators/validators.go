// internal/app/system/validators/validators.go
package validators

// Terminology: User Identifiers
//   - UserID / user_id: the account _id, repeated on profiles, activities and sessions

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// nonBlank matches a string with at least one non-space character.
var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. Servers that don't support collMod validators are logged and
// skipped.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("accounts", AccountsSchema())
	ensure("users", UsersSchema())
	ensure("activities", ActivitiesSchema())
	ensure("sessions", SessionsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if it was actually created.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErr(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// AccountsSchema requires the identity fields of an account.
func AccountsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "email_ci", "password_hash", "created_at"},
			"properties": bson.M{
				"email":         nonBlank,
				"email_ci":      nonBlank,
				"password_hash": nonBlank,
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

// UsersSchema requires the profile link, a name and a known role.
func UsersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "name", "role"},
			"properties": bson.M{
				"user_id": bson.M{"bsonType": "objectId"},
				"name":    nonBlank,
				"name_ci": bson.M{"bsonType": "string"},
				"email":   bson.M{"bsonType": "string"},
				"role":    bson.M{"enum": bson.A{models.RoleIntern, models.RoleManager}},
			},
		},
	}
}

// ActivitiesSchema requires an owner, a description and a date. The category
// may be blank; it renders as the fallback label.
func ActivitiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "description", "date"},
			"properties": bson.M{
				"user_id":     bson.M{"bsonType": "objectId"},
				"user_name":   bson.M{"bsonType": "string"},
				"category":    bson.M{"bsonType": "string"},
				"description": nonBlank,
				"date":        bson.M{"bsonType": "date"},
				"participant_ids": bson.M{
					"bsonType": "array",
					"items":    bson.M{"bsonType": "objectId"},
				},
				"participant_names": bson.M{
					"bsonType": "array",
					"items":    bson.M{"bsonType": "string"},
				},
				"manager_comment": bson.M{"bsonType": "string"},
			},
		},
	}
}

// SessionsSchema requires the owner and the lifetime bounds.
func SessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "login_at", "expires_at"},
			"properties": bson.M{
				"user_id":        bson.M{"bsonType": "objectId"},
				"login_at":       bson.M{"bsonType": "date"},
				"last_active_at": bson.M{"bsonType": "date"},
				"expires_at":     bson.M{"bsonType": "date"},
				"logout_at":      bson.M{"bsonType": "date"},
				"end_reason":     bson.M{"enum": bson.A{models.EndReasonLogout, models.EndReasonReplaced}},
			},
		},
	}
}
