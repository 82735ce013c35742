// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// EnsureIndexes creates the feed listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "board_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_posts_board"),
	})
	return err
}

func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListByBoard returns up to limit posts for a board, newest first.
func (s *Store) ListByBoard(ctx context.Context, boardID primitive.ObjectID, limit int64) ([]models.Post, error) {
	cursor, err := s.c.Find(ctx, bson.M{"board_id": boardID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeleteByBoard removes a deleted board's feed. Returns the number removed.
func (s *Store) DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"board_id": boardID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
