// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Email: What the user types to sign in (stored lowercase)

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account that owns landing pages.
//
// Auth fields:
//   - Email: sign-in identifier (stored lowercase)
//   - EmailCI: case/diacritic-insensitive version for matching (folded)
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName string             `bson:"display_name" json:"display_name"`

	Email        string `bson:"email" json:"email"`
	EmailCI      string `bson:"email_ci" json:"email_ci"`
	PasswordHash string `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)

	Status string `bson:"status,omitempty" json:"status,omitempty"` // active, disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
