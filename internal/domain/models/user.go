// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - AccountID / account_id: the _id of the login identity in the accounts collection
//   - UserID / user_id: the same id as referenced from profiles, activities and sessions

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleIntern  = "stajyer"
	RoleManager = "yonetici"
)

// Account is the login identity. It is never rendered.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // folded for unique lookups
	PasswordHash string             `bson:"password_hash" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User is the role-bearing profile linked to an Account by UserID.
//
// NOTE:
//   - Role is assigned once (stajyer at registration). No operation changes it.
type User struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // folded, for sorting
	Email  string             `bson:"email" json:"email"`
	Role   string             `bson:"role" json:"role"` // stajyer | yonetici

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsManager reports whether the profile has the manager role.
func (u User) IsManager() bool { return u.Role == RoleManager }

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleIntern || role == RoleManager
}
