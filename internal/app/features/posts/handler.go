// internal/app/features/posts/handler.go
package posts

import (
	"context"

	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// defaultFeedLimit is the page size when the caller does not ask for one.
const defaultFeedLimit = 50

// maxFeedLimit caps the page size a caller can request.
const maxFeedLimit = 200

// PostStore is the feed persistence contract. Implemented by store/posts.
type PostStore interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	ListByBoard(ctx context.Context, boardID primitive.ObjectID, limit int64) ([]models.Post, error)
}

// BoardLoader fetches the board a post belongs to, for the membership
// gate. Implemented by store/boards.
type BoardLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Board, error)
}

// Handler provides the per-board feed endpoints.
type Handler struct {
	Posts  PostStore
	Boards BoardLoader
	Log    *zap.Logger
}

// NewHandler creates a posts Handler.
func NewHandler(posts PostStore, boards BoardLoader, logger *zap.Logger) *Handler {
	return &Handler{Posts: posts, Boards: boards, Log: logger}
}
