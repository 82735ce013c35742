// internal/app/features/boards/handler.go
package boards

import (
	"context"
	"io"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxCommitAttempts bounds the reload-and-redecide loop after a concurrent
// update. A guard or version miss means another request changed the board
// between our read and our write; the decision is replayed against the
// fresh snapshot.
const maxCommitAttempts = 3

// BoardStore is the persistence contract the lifecycle handlers need.
// Member-set edits are guarded atomic operations; multi-field changes are
// version-checked. Implemented by store/boards.
type BoardStore interface {
	Create(ctx context.Context, b models.Board) (models.Board, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Board, error)
	AddMember(ctx context.Context, boardID, userID primitive.ObjectID) (models.Board, error)
	RemoveMember(ctx context.Context, boardID, ownerID, targetID primitive.ObjectID) (models.Board, error)
	ReplaceVersioned(ctx context.Context, b models.Board) (models.Board, error)
	DeleteVersioned(ctx context.Context, id primitive.ObjectID, version int64) error
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Board, error)
}

// InviteStore is the invite persistence contract. Implemented by
// store/invites.
type InviteStore interface {
	Create(ctx context.Context, inv models.BoardInvite) (models.BoardInvite, error)
	FindPending(ctx context.Context, boardID, userID primitive.ObjectID) (*models.BoardInvite, error)
	MarkAccepted(ctx context.Context, boardID, userID primitive.ObjectID) error
	ListForBoard(ctx context.Context, boardID primitive.ObjectID) ([]models.BoardInvite, error)
}

// UserDirectory answers whether an invitee exists. Implemented by
// store/users.
type UserDirectory interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// AssetStore holds cover photos. Satisfied by waffle's storage.Store.
type AssetStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// PostPurger removes a deleted board's feed. Implemented by store/posts.
type PostPurger interface {
	DeleteByBoard(ctx context.Context, boardID primitive.ObjectID) (int64, error)
}

// Handler provides the board lifecycle endpoints: create, view, join,
// leave, kick, invite.
type Handler struct {
	Boards  BoardStore
	Invites InviteStore
	Users   UserDirectory
	Assets  AssetStore
	Posts   PostPurger

	// PublicURL prefixes stored asset paths when building the
	// cover_photo_url returned to callers.
	PublicURL string

	Log *zap.Logger
}

// NewHandler creates a boards Handler.
func NewHandler(boards BoardStore, invites InviteStore, users UserDirectory, assets AssetStore, posts PostPurger, publicURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Boards:    boards,
		Invites:   invites,
		Users:     users,
		Assets:    assets,
		Posts:     posts,
		PublicURL: publicURL,
		Log:       logger,
	}
}
