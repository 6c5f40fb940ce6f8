package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Update types.
const (
	UpdateTypeAnnouncement = "announcement"
	UpdateTypeNews         = "news"
	UpdateTypeAlert        = "alert"
	UpdateTypeEvent        = "event"
	UpdateTypeProtocol     = "protocol"
)

// Update statuses.
const (
	UpdateStatusDraft     = "draft"
	UpdateStatusScheduled = "scheduled"
	UpdateStatusPublished = "published"
)

// Update is an announcement published to citizens. A published update with
// AutoExpire set and an ExpirationDate in the past stays in storage but is
// excluded from user-facing reads.
type Update struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Content        string             `bson:"content" json:"content"`
	Type           string             `bson:"type" json:"type"`
	Priority       string             `bson:"priority" json:"priority"`
	Tags           []string           `bson:"tags" json:"tags"`
	ScheduledDate  time.Time          `bson:"scheduled_date,omitempty" json:"scheduledDate,omitempty"`
	ExpirationDate time.Time          `bson:"expiration_date,omitempty" json:"expirationDate,omitempty"`
	AutoExpire     bool               `bson:"auto_expire" json:"autoExpire"`
	Status         string             `bson:"status" json:"status"`
	Version        int64              `bson:"version" json:"version"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Expired reports whether the update has auto-expired as of now.
func (u *Update) Expired(now time.Time) bool {
	return u.AutoExpire && !u.ExpirationDate.IsZero() && u.ExpirationDate.Before(now)
}

// UpdateView is the enriched shape served to citizens.
type UpdateView struct {
	Update
	IsNew       bool      `json:"isNew"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// UpdatePatch is a PATCH-style partial update; nil fields are left untouched.
type UpdatePatch struct {
	Title          *string    `json:"title,omitempty"`
	Content        *string    `json:"content,omitempty"`
	Type           *string    `json:"type,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	Tags           *[]string  `json:"tags,omitempty"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	AutoExpire     *bool      `json:"autoExpire,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Version        *int64     `json:"version,omitempty"`
}
