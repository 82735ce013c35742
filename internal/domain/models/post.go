// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a feed entry on a board. Only current members (including the
// owner) may post.
type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BoardID  primitive.ObjectID `bson:"board_id" json:"board_id"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"author_id"`
	Body     string             `bson:"body" json:"body"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
