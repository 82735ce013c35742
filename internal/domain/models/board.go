// internal/domain/models/board.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Board is a shared community board.
//
// NOTE:
//   - Members is append-ordered: joins append, removals $pull. The order is
//     therefore join order, which the ownership-transfer fallback relies on.
//   - The owner is also present in Members; member_count is never stored,
//     it is derived from Members at response time.
//   - Version guards versioned replace/delete; member-set edits bump it too.
type Board struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`

	// CoverPhotoPath is the blob-store object key; CoverPhotoURL is the
	// public URL derived from it at upload time.
	CoverPhotoPath string `bson:"cover_photo_path,omitempty" json:"-"`
	CoverPhotoURL  string `bson:"cover_photo_url,omitempty" json:"cover_photo_url,omitempty"`

	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MemberCount reports the number of members. Derived, never authoritative
// in storage.
func (b Board) MemberCount() int { return len(b.Members) }
