package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the resource services.
const (
	NotifFAQCreated      = "faq_created"
	NotifFAQUpdated      = "faq_updated"
	NotifFAQDeleted      = "faq_deleted"
	NotifUpdateCreated   = "update_created"
	NotifUpdateUpdated   = "update_updated"
	NotifUpdateDeleted   = "update_deleted"
	NotifUpdatePublished = "update_published"
	NotifAccountChanged  = "account_changed"
	NotifTraining        = "training_completed"
)

// Notification is created only as a side effect of mutations, never directly
// by end users. A nil UserID means the notification is broadcast to everyone.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	Type      string              `bson:"type" json:"type"`
	Title     string              `bson:"title" json:"title"`
	Message   string              `bson:"message" json:"message"`
	Read      bool                `bson:"read" json:"read"`
	TargetID  *primitive.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time           `bson:"expires_at" json:"expiresAt"`
}
