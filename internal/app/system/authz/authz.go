// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/stajyerlog/internal/app/system/auth"
	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"github.com/dalemusser/stajyerlog/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. Callers can trust that ok=true means an
// authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session: fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return normalize.Role(user.Role), user.Name, userID, true
}

// UserID returns the current user's ObjectID, or NilObjectID.
func UserID(r *http.Request) primitive.ObjectID {
	_, _, id, _ := UserCtx(r)
	return id
}

// Role returns the current user's normalized role and whether a user is present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}

// HasAnyRole reports whether a signed-in user holds one of roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, ok := Role(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == normalize.Role(want) {
			return true
		}
	}
	return false
}

// IsManager reports whether the current request's user is a yönetici.
func IsManager(r *http.Request) bool {
	return HasAnyRole(r, models.RoleManager)
}

// IsIntern reports whether the current request's user is a stajyer.
func IsIntern(r *http.Request) bool {
	return HasAnyRole(r, models.RoleIntern)
}

// IsOwner reports whether the current user created the activity.
func IsOwner(r *http.Request, a models.Activity) bool {
	return a.IsOwnedBy(UserID(r))
}
