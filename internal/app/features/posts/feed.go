// internal/app/features/posts/feed.go
package posts

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/corkboardhq/corkboard/internal/app/policy/boardpolicy"
	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// PostView is a feed entry as returned to callers.
type PostView struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(p models.Post) PostView {
	return PostView{
		ID:        p.ID.Hex(),
		BoardID:   p.BoardID.Hex(),
		AuthorID:  p.AuthorID.Hex(),
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
	}
}

func boardID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, fault.New(fault.Validation, "malformed board id")
	}
	return id, nil
}

// ServeFeed handles GET /boards/{id}/posts: newest first, limited by the
// optional limit query parameter.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Err(w, r, h.Log, fault.New(fault.Unauthenticated, "sign in required"))
		return
	}

	id, err := boardID(r)
	if err != nil {
		respond.Err(w, r, h.Log, err)
		return
	}

	limit := int64(defaultFeedLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			respond.Err(w, r, h.Log, fault.New(fault.Validation, "limit must be a positive integer"))
			return
		}
		if n > maxFeedLimit {
			n = maxFeedLimit
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.Boards.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, boardstore.ErrNotFound) {
			respond.Err(w, r, h.Log, fault.New(fault.NotFound, "board not found"))
			return
		}
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not load board", err))
		return
	}
	if !boardpolicy.IsMember(b, u.ID) {
		respond.Err(w, r, h.Log, fault.New(fault.Forbidden, "members only"))
		return
	}

	list, err := h.Posts.ListByBoard(ctx, id, limit)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not list posts", err))
		return
	}

	views := make([]PostView, 0, len(list))
	for _, p := range list {
		views = append(views, viewOf(p))
	}
	respond.JSON(w, http.StatusOK, views)
}
