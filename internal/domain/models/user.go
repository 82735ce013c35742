// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth methods.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
)

// User is an account holder. Board membership is not embedded here; boards
// carry their own member lists.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	Email      string             `bson:"email" json:"email"`
	AuthMethod string             `bson:"auth_method" json:"auth_method"`

	// PasswordHash is a bcrypt hash; empty for OAuth-only accounts.
	PasswordHash []byte `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
