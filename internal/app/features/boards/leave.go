// internal/app/features/boards/leave.go
package boards

import (
	"context"
	"encoding/json"
	"errors"
	"io"
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

type leaveRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

// HandleLeave handles POST /boards/{id}/leave. An owner leaving hands the
// board to a successor, or deletes it when nobody remains. The multi-field
// rewrite (owner plus member list) commits through a version check so a
// concurrent join or kick forces a reload instead of a lost update.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
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

	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed request body"))
		return
	}
	var requested primitive.ObjectID
	if req.NewOwnerID != "" {
		requested, err = primitive.ObjectIDFromHex(req.NewOwnerID)
		if err != nil {
			respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed new owner id"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
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

		res, err := boardpolicy.Leave(b, u.ID, requested)
		if err != nil {
			respond.Err(w, r, h.Log, err)
			return
		}

		switch res.Outcome {
		case boardpolicy.LeaveDeleted:
			err = h.Boards.DeleteVersioned(ctx, b.ID, b.Version)
			if errors.Is(err, boardstore.ErrStale) {
				continue
			}
			if err != nil {
				respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not delete board", err))
				return
			}
			h.cleanupDeletedBoard(ctx, b)
			h.Log.Info("board deleted on last owner leave",
				zap.String("board_id", b.ID.Hex()),
				zap.String("owner_id", u.ID.Hex()))
			respond.JSON(w, http.StatusOK, leaveResponse{Deleted: true})
			return

		default:
			updated, err := h.Boards.ReplaceVersioned(ctx, res.Board)
			if errors.Is(err, boardstore.ErrStale) {
				continue
			}
			if err != nil {
				respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not update board", err))
				return
			}
			if res.Outcome == boardpolicy.LeaveTransferred {
				h.Log.Info("board ownership transferred",
					zap.String("board_id", b.ID.Hex()),
					zap.String("from", u.ID.Hex()),
					zap.String("to", res.NewOwner.Hex()))
			} else {
				h.Log.Info("board left",
					zap.String("board_id", b.ID.Hex()),
					zap.String("user_id", u.ID.Hex()))
			}
			v := viewOf(updated, u.ID)
			respond.JSON(w, http.StatusOK, leaveResponse{Deleted: false, Board: &v})
			return
		}
	}

	respond.Err(w, r, h.Log, fault.New(fault.Transient, "board is busy, try again"))
}
