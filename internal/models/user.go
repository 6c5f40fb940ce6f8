package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles assignable to a user account.
const (
	RoleCitizen   = "citizen"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Account statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// UserProfile carries optional free-form profile information.
type UserProfile struct {
	Location     string                 `bson:"location,omitempty" json:"location,omitempty"`
	Organization string                 `bson:"organization,omitempty" json:"organization,omitempty"`
	Expertise    []string               `bson:"expertise,omitempty" json:"expertise,omitempty"`
	Preferences  map[string]interface{} `bson:"preferences,omitempty" json:"preferences,omitempty"`
}

// UserStats is maintained exclusively by reading submissions; the API never
// accepts direct writes to it.
type UserStats struct {
	TotalReadings int       `bson:"total_readings" json:"totalReadings"`
	Streak        int       `bson:"streak" json:"streak"`
	Accuracy      float64   `bson:"accuracy" json:"accuracy"`
	LastReadingAt time.Time `bson:"last_reading_at,omitempty" json:"lastReadingAt,omitempty"`
}

// User represents a registered CoastWatch account.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Username       string             `bson:"username" json:"username"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Role           string             `bson:"role" json:"role"`
	Team           string             `bson:"team,omitempty" json:"team,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Profile        UserProfile        `bson:"profile" json:"profile"`
	Stats          UserStats          `bson:"stats" json:"stats"`
	LastActive     time.Time          `bson:"last_active,omitempty" json:"lastActive,omitempty"`
	Version        int64              `bson:"version" json:"version"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the user shape returned to other users (no credentials).
type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
	Team     string             `json:"team,omitempty"`
	Status   string             `json:"status"`
	Stats    UserStats          `json:"stats"`
}

// Public strips credential fields for responses visible to other users.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Team:     u.Team,
		Status:   u.Status,
		Stats:    u.Stats,
	}
}

// UserPatch is a PATCH-style partial update; nil fields are left untouched.
// Stats is deliberately absent: it is owned by the reading pipeline.
type UserPatch struct {
	Name    *string      `json:"name,omitempty"`
	Team    *string      `json:"team,omitempty"`
	Status  *string      `json:"status,omitempty"`
	Role    *string      `json:"role,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
	Version *int64       `json:"version,omitempty"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
