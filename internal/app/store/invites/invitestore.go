// internal/app/store/invites/invitestore.go
package invitestore

import (
	"context"
	"errors"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicatePendingInvite = errors.New("an invite for this user is already pending")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("board_invites")}
}

// EnsureIndexes creates the partial unique index that enforces at most one
// pending invite per (board, invitee), plus the board listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "board_id", Value: 1},
				{Key: "invited_user_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("idx_invites_one_pending").
				SetPartialFilterExpression(bson.M{"status": models.InvitePending}),
		},
		{
			Keys:    bson.D{{Key: "board_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_invites_board"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a pending invite. The partial unique index rejects a
// second pending invite for the same (board, invitee) even under
// concurrent creation.
func (s *Store) Create(ctx context.Context, inv models.BoardInvite) (models.BoardInvite, error) {
	inv.ID = primitive.NewObjectID()
	inv.Status = models.InvitePending
	inv.CreatedAt = time.Now().UTC()
	inv.ResolvedAt = nil

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.BoardInvite{}, ErrDuplicatePendingInvite
		}
		return models.BoardInvite{}, err
	}
	return inv, nil
}

// FindPending returns the pending invite for (boardID, userID), or nil.
func (s *Store) FindPending(ctx context.Context, boardID, userID primitive.ObjectID) (*models.BoardInvite, error) {
	var inv models.BoardInvite
	err := s.c.FindOne(ctx, bson.M{
		"board_id":        boardID,
		"invited_user_id": userID,
		"status":          models.InvitePending,
	}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// MarkAccepted resolves any pending invite for (boardID, userID). Called
// when the invitee joins, whether through the invite or on their own.
func (s *Store) MarkAccepted(ctx context.Context, boardID, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{
			"board_id":        boardID,
			"invited_user_id": userID,
			"status":          models.InvitePending,
		},
		bson.M{"$set": bson.M{
			"status":      models.InviteAccepted,
			"resolved_at": now,
		}},
	)
	return err
}

// ListForBoard returns a board's invites, newest first.
func (s *Store) ListForBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.BoardInvite, error) {
	cursor, err := s.c.Find(ctx, bson.M{"board_id": boardID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invites []models.BoardInvite
	if err := cursor.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}
