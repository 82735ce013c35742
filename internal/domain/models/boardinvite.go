// internal/domain/models/boardinvite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite statuses.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
)

// BoardInvite is an invitation for a user to join a board.
//
// At most one pending invite may exist per (board_id, invited_user_id);
// the invite store enforces this with a partial unique index. An invitee who
// joins on their own has any pending invite marked accepted.
type BoardInvite struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BoardID       primitive.ObjectID `bson:"board_id" json:"board_id"`
	InvitedUserID primitive.ObjectID `bson:"invited_user_id" json:"invited_user_id"`
	InvitedBy     primitive.ObjectID `bson:"invited_by" json:"invited_by"`
	Status        string             `bson:"status" json:"status"`

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ResolvedAt *time.Time `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}
