package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Water-quality parameters accepted by the reading endpoint.
var AllowedParameters = map[string]bool{
	"temperature":      true,
	"ph":               true,
	"salinity":         true,
	"dissolved_oxygen": true,
	"turbidity":        true,
	"nitrate":          true,
	"phosphate":        true,
}

// Location pins a reading to a coastal spot.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Village   string  `bson:"village,omitempty" json:"village,omitempty"`
}

// Reading is a single water-quality measurement submitted by a citizen.
// UserID is immutable after creation; readings are append-mostly.
type Reading struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Parameter string             `bson:"parameter" json:"parameter"`
	Value     float64            `bson:"value" json:"value"`
	Unit      string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Location  Location           `bson:"location" json:"location"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Accuracy  float64            `bson:"accuracy" json:"accuracy"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Version   int64              `bson:"version" json:"version"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ReadingRequest is the submission payload; the owner comes from the token.
type ReadingRequest struct {
	Parameter string    `json:"parameter"`
	Value     *float64  `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Location  Location  `json:"location"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}
