package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority levels shared by FAQs and updates.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// FAQ importance levels.
const (
	ImportanceNormal   = "normal"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

// FAQ statuses.
const (
	FAQStatusActive   = "active"
	FAQStatusArchived = "archived"
)

// FAQ is an admin-curated question/answer entry, readable by everyone.
type FAQ struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category    string             `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Question    string             `bson:"question" json:"question"`
	Answer      string             `bson:"answer" json:"answer"`
	Priority    string             `bson:"priority" json:"priority"`
	Importance  string             `bson:"importance" json:"importance"`
	Tags        []string           `bson:"tags" json:"tags"`
	ViewCount   int64              `bson:"view_count" json:"viewCount"`
	Order       int                `bson:"order" json:"order"`
	Status      string             `bson:"status" json:"status"`
	Version     int64              `bson:"version" json:"version"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FAQPatch is a PATCH-style partial update; nil fields are left untouched.
// ViewCount is absent on purpose: it only moves through detail reads.
type FAQPatch struct {
	Category    *string   `json:"category,omitempty"`
	Subcategory *string   `json:"subcategory,omitempty"`
	Question    *string   `json:"question,omitempty"`
	Answer      *string   `json:"answer,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Importance  *string   `json:"importance,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Order       *int      `json:"order,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Version     *int64    `json:"version,omitempty"`
}
