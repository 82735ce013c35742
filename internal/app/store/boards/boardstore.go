// internal/app/store/boards/boardstore.go
package boardstore

import (
	"context"
	"errors"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("board not found")

	// ErrStale: a versioned replace or delete found no document with the
	// expected version. The caller should reload and re-decide.
	ErrStale = errors.New("board was modified concurrently")

	// ErrNoMatch: a guarded member-set update matched no document, either
	// because the board is gone or because the decision's precondition no
	// longer holds. The caller should reload to tell the two apart.
	ErrNoMatch = errors.New("board missing or precondition no longer holds")
)

// Store persists Board documents.
//
// Member-set edits go through guarded atomic updates ($addToSet/$pull with
// the decision's precondition in the filter) so concurrent joins and kicks
// are commutative and loss-free. Multi-field changes (ownership transfer,
// deletion) go through version-checked operations instead.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("boards")}
}

// EnsureIndexes creates the membership lookup indexes behind ListForUser.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("idx_boards_owner"),
		},
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("idx_boards_members"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new board at version 1.
func (s *Store) Create(ctx context.Context, b models.Board) (models.Board, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Board, error) {
	var b models.Board
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Board{}, ErrNotFound
	}
	if err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// AddMember atomically appends userID to the member set, provided userID is
// neither the owner nor already a member. Returns the updated board, or
// ErrNoMatch when the guard fails.
func (s *Store) AddMember(ctx context.Context, boardID, userID primitive.ObjectID) (models.Board, error) {
	filter := bson.M{
		"_id":      boardID,
		"owner_id": bson.M{"$ne": userID},
		"members":  bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"members": userID},
		"$inc":      bson.M{"version": 1},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}

	var b models.Board
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Board{}, ErrNoMatch
	}
	if err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// RemoveMember atomically removes targetID from the member set, provided
// ownerID still owns the board and targetID is a member other than the
// owner. Returns the updated board, or ErrNoMatch when any guard fails,
// including an ownership change since the caller's read.
func (s *Store) RemoveMember(ctx context.Context, boardID, ownerID, targetID primitive.ObjectID) (models.Board, error) {
	filter := bson.M{
		"_id":      boardID,
		"owner_id": bson.M{"$eq": ownerID, "$ne": targetID},
		"members":  targetID,
	}
	update := bson.M{
		"$pull": bson.M{"members": targetID},
		"$inc":  bson.M{"version": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	var b models.Board
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Board{}, ErrNoMatch
	}
	if err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// ReplaceVersioned replaces the whole document if the stored version still
// equals b.Version, bumping the version in the replacement. Used for
// ownership transfers, where owner and member set must change together.
func (s *Store) ReplaceVersioned(ctx context.Context, b models.Board) (models.Board, error) {
	expected := b.Version
	b.Version = expected + 1
	b.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": b.ID, "version": expected}, b)
	if err != nil {
		return models.Board{}, err
	}
	if res.MatchedCount == 0 {
		return models.Board{}, ErrStale
	}
	return b, nil
}

// DeleteVersioned removes the board if the stored version still matches.
func (s *Store) DeleteVersioned(ctx context.Context, id primitive.ObjectID, version int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "version": version})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrStale
	}
	return nil
}

// ListForUser returns the boards the user owns or belongs to, newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Board, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"members": userID},
	}}

	cursor, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var boards []models.Board
	if err := cursor.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}
