// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session end reasons.
const (
	EndReasonLogout   = "logout"
	EndReasonReplaced = "replaced" // closed by a newer login of the same user
)

// Session is the server-side login record referenced by the session cookie.
type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id"`

	LoginAt      time.Time  `bson:"login_at"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	ExpiresAt    time.Time  `bson:"expires_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	EndReason    string     `bson:"end_reason,omitempty"`

	// Open is true until the session is closed. A partial unique index on
	// user_id over open sessions keeps one open session per user.
	Open bool `bson:"open,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`
}

// IsOpen reports whether the session is neither closed nor expired at now.
func (s Session) IsOpen(now time.Time) bool {
	return s.LogoutAt == nil && now.Before(s.ExpiresAt)
}
