package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/authutil"
	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultPassword is the password given to accounts made by CreateAccount.
const DefaultPassword = "sifre12345"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a profile (no account) with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     normalize.Email(email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateIntern creates an intern profile.
func (f *Fixtures) CreateIntern(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleIntern)
}

// CreateManager creates a manager profile.
func (f *Fixtures) CreateManager(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleManager)
}

// CreateAccount creates an account with DefaultPassword and a matching
// profile, as Register would.
func (f *Fixtures) CreateAccount(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	hash, err := authutil.HashPassword(DefaultPassword)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	u := f.CreateUser(ctx, name, email, role)
	now := time.Now().UTC()
	acct := models.Account{
		ID:           u.UserID,
		Email:        u.Email,
		EmailCI:      u.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, acct); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return u
}

// CreateActivity inserts an activity owned by owner. Extra participants are
// added after the owner.
func (f *Fixtures) CreateActivity(ctx context.Context, owner models.User, category, description string, date time.Time, participants ...primitive.ObjectID) models.Activity {
	f.t.Helper()

	ids := append([]primitive.ObjectID{owner.UserID}, participants...)
	now := time.Now().UTC()
	a := models.Activity{
		ID:             primitive.NewObjectID(),
		UserID:         owner.UserID,
		UserName:       owner.Name,
		Category:       category,
		Description:    description,
		Date:           date,
		ParticipantIDs: ids,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("activities").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test activity: %v", err)
	}
	return a
}

// CommentOn sets a manager comment directly.
func (f *Fixtures) CommentOn(ctx context.Context, a models.Activity, comment string) models.Activity {
	f.t.Helper()
	if _, err := f.db.Collection("activities").UpdateByID(ctx, a.ID,
		bson.M{"$set": bson.M{"manager_comment": comment}}); err != nil {
		f.t.Fatalf("failed to comment on test activity: %v", err)
	}
	a.ManagerComment = comment
	return a
}
