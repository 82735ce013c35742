package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helpers for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user and returns it with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		Email:      email,
		AuthMethod: models.AuthPassword,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return u
}

// CreateBoard inserts a board owned by owner, with owner plus the extra
// members in the member list, at version 1.
func (f *Fixtures) CreateBoard(ctx context.Context, owner primitive.ObjectID, title string, members ...primitive.ObjectID) models.Board {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Board{
		ID:        primitive.NewObjectID(),
		Title:     title,
		OwnerID:   owner,
		Members:   append([]primitive.ObjectID{owner}, members...),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("boards").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("create test board: %v", err)
	}
	return b
}

// CreatePendingInvite inserts a pending invite for (board, invitee).
func (f *Fixtures) CreatePendingInvite(ctx context.Context, boardID, inviteeID, invitedBy primitive.ObjectID) models.BoardInvite {
	f.t.Helper()

	inv := models.BoardInvite{
		ID:            primitive.NewObjectID(),
		BoardID:       boardID,
		InvitedUserID: inviteeID,
		InvitedBy:     invitedBy,
		Status:        models.InvitePending,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("board_invites").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("create test invite: %v", err)
	}
	return inv
}
