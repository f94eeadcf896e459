// internal/domain/models/activity.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FallbackCategory labels activities whose category is blank.
const FallbackCategory = "Diğer"

// ActivityCategories is the suggested category list shown in forms.
// Categories are not validated against it; any non-blank string is accepted.
var ActivityCategories = []string{
	"Yazılım",
	"Tasarım",
	"Analiz",
	"Toplantı",
	"Eğitim",
	"İçerik Üretimi",
	"Sosyal Medya",
	"Video Prodüksiyon",
	"Grafik Tasarım",
	"Web Tasarım",
	"Metin Yazarlığı",
	"Araştırma",
	FallbackCategory,
}

// Activity is one dated work-log entry.
//
// UserID/UserName are the owner and are written once at creation.
// ParticipantIDs always includes UserID.
type Activity struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID   `bson:"user_id" json:"user_id"`
	UserName         string               `bson:"user_name" json:"user_name"`
	Category         string               `bson:"category" json:"category"`
	Description      string               `bson:"description" json:"description"`
	Date             time.Time            `bson:"date" json:"date"` // calendar day at local midnight
	ParticipantIDs   []primitive.ObjectID `bson:"participant_ids,omitempty" json:"participant_ids,omitempty"`
	ParticipantNames []string             `bson:"participant_names,omitempty" json:"participant_names,omitempty"`
	ManagerComment   string               `bson:"manager_comment,omitempty" json:"manager_comment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CategoryLabel returns the category, or FallbackCategory when blank.
func (a Activity) CategoryLabel() string {
	if c := strings.TrimSpace(a.Category); c != "" {
		return c
	}
	return FallbackCategory
}

// HasComment reports whether a manager left a non-blank comment.
func (a Activity) HasComment() bool {
	return strings.TrimSpace(a.ManagerComment) != ""
}

// IsOwnedBy reports whether userID created the activity.
func (a Activity) IsOwnedBy(userID primitive.ObjectID) bool {
	return !userID.IsZero() && a.UserID == userID
}

// Participants returns ParticipantIDs, or just the owner for records
// written before participants existed.
func (a Activity) Participants() []primitive.ObjectID {
	if len(a.ParticipantIDs) > 0 {
		return a.ParticipantIDs
	}
	return []primitive.ObjectID{a.UserID}
}
