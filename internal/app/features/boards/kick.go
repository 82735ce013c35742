// internal/app/features/boards/kick.go
package boards

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/corkboardhq/corkboard/internal/app/policy/boardpolicy"
	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
)

type kickRequest struct {
	TargetID string `json:"target_id"`
}

// HandleKick handles POST /boards/{id}/kick.
func (h *Handler) HandleKick(w http.ResponseWriter, r *http.Request) {
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

	var req kickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed request body"))
		return
	}
	target, err := primitive.ObjectIDFromHex(req.TargetID)
	if err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed target id"))
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

		if _, err := boardpolicy.Kick(b, u.ID, target); err != nil {
			respond.Err(w, r, h.Log, err)
			return
		}

		updated, err := h.Boards.RemoveMember(ctx, id, u.ID, target)
		if errors.Is(err, boardstore.ErrNoMatch) {
			continue
		}
		if err != nil {
			respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not remove member", err))
			return
		}

		h.Log.Info("member kicked",
			zap.String("board_id", id.Hex()),
			zap.String("target_id", target.Hex()),
			zap.String("by", u.ID.Hex()))
		respond.JSON(w, http.StatusOK, viewOf(updated, u.ID))
		return
	}

	respond.Err(w, r, h.Log, fault.New(fault.Transient, "board is busy, try again"))
}
