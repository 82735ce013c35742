// internal/app/features/boards/join.go
package boards

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/corkboardhq/corkboard/internal/app/policy/boardpolicy"
	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
)

// HandleJoin handles POST /boards/{id}/join. The membership check and the
// write are separated by a window where another request can change the
// board, so the write carries the same guards as the decision and we
// reload and re-decide on a miss.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		b, err := h.Boards.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, boardstore.ErrNotFound) {
				respond.Err(w, r, h.Log, fault.New(fault.NotFound, "board not found"))
				return
			}
			respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not load board", err))
			return
		}

		if _, err := boardpolicy.Join(b, u.ID); err != nil {
			respond.Err(w, r, h.Log, err)
			return
		}

		updated, err := h.Boards.AddMember(ctx, id, u.ID)
		if errors.Is(err, boardstore.ErrNoMatch) {
			// Board changed under us; reload and re-decide.
			continue
		}
		if err != nil {
			respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not join board", err))
			return
		}

		// A pending invite for this user is satisfied by the join even
		// though the join did not go through the invite. Best effort.
		if err := h.Invites.MarkAccepted(ctx, id, u.ID); err != nil {
			h.Log.Warn("could not resolve invite after join",
				zap.String("board_id", id.Hex()),
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err))
		}

		h.Log.Info("board joined",
			zap.String("board_id", id.Hex()),
			zap.String("user_id", u.ID.Hex()))
		respond.JSON(w, http.StatusOK, viewOf(updated, u.ID))
		return
	}

	respond.Err(w, r, h.Log, fault.New(fault.Transient, "board is busy, try again"))
}
