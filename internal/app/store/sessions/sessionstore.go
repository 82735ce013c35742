// internal/app/store/sessions/sessionstore.go
package sessionstore

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTTL is how long a bearer token stays valid without re-login.
const DefaultTTL = 30 * 24 * time.Hour

var ErrNotFound = errors.New("session not found")

// Session is an opaque bearer credential for one signed-in user.
// The token carries no structure; everything about the caller comes from
// this record.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	UserID    primitive.ObjectID `bson:"user_id"`
	ExpiresAt time.Time          `bson:"expires_at"`
	CreatedAt time.Time          `bson:"created_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates the unique token index and the TTL index that
// reaps expired sessions.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_sessions_token"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_sessions_ttl"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a new session for userID. The token is 32 random bytes,
// hex-encoded.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, ttl time.Duration) (Session, error) {
	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		return Session{}, errors.New("session token generation failed")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now().UTC()
	sess := Session{
		ID:        primitive.NewObjectID(),
		Token:     hex.EncodeToString(raw),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Lookup resolves a bearer token to its session. Expired sessions are
// treated as absent even before the TTL reaper removes them.
func (s *Store) Lookup(ctx context.Context, token string) (Session, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Delete revokes a session by token. Deleting an absent token is not an
// error.
func (s *Store) Delete(ctx context.Context, token string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"token": token})
	return err
}

// DeleteForUser revokes every session belonging to userID.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
