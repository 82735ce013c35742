// internal/app/features/posts/create.go
package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/corkboardhq/corkboard/internal/app/policy/boardpolicy"
	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/htmlsanitize"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
)

type createRequest struct {
	Body string `json:"body"`
}

// HandleCreate handles POST /boards/{id}/posts. Members only.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed request body"))
		return
	}
	body := htmlsanitize.UGC(req.Body)
	if body == "" {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "post body is required"))
		return
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

	created, err := h.Posts.Create(ctx, models.Post{
		BoardID:  id,
		AuthorID: u.ID,
		Body:     body,
	})
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not create post", err))
		return
	}

	h.Log.Info("post created",
		zap.String("board_id", id.Hex()),
		zap.String("post_id", created.ID.Hex()),
		zap.String("author_id", u.ID.Hex()))
	respond.JSON(w, http.StatusCreated, viewOf(created))
}
