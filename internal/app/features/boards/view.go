// internal/app/features/boards/view.go
package boards

import (
	"context"
	"errors"
	"net/http"

	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
)

// ServeBoard handles GET /boards/{id}.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	respond.JSON(w, http.StatusOK, viewOf(b, u.ID))
}

// ServeList handles GET /boards: the boards the caller owns or has joined,
// newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Err(w, r, h.Log, fault.New(fault.Unauthenticated, "sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Boards.ListForUser(ctx, u.ID)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not list boards", err))
		return
	}

	views := make([]BoardView, 0, len(list))
	for _, b := range list {
		views = append(views, viewOf(b, u.ID))
	}
	respond.JSON(w, http.StatusOK, views)
}
