// internal/app/features/boards/invite.go
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
	invitestore "github.com/corkboardhq/corkboard/internal/app/store/invites"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
)

type inviteRequest struct {
	InvitedUserID string `json:"invited_user_id"`
}

type inviteView struct {
	ID            string `json:"id"`
	BoardID       string `json:"board_id"`
	InvitedUserID string `json:"invited_user_id"`
	InvitedBy     string `json:"invited_by"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func inviteViewOf(inv models.BoardInvite) inviteView {
	return inviteView{
		ID:            inv.ID.Hex(),
		BoardID:       inv.BoardID.Hex(),
		InvitedUserID: inv.InvitedUserID.Hex(),
		InvitedBy:     inv.InvitedBy.Hex(),
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleInvite handles POST /boards/{id}/invites. Any member may invite.
// The pending-invite check is advisory; the partial unique index is what
// actually holds the one-pending-invite rule under concurrent requests.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
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

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed request body"))
		return
	}
	invitee, err := primitive.ObjectIDFromHex(req.InvitedUserID)
	if err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed invited user id"))
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

	exists, err := h.Users.Exists(ctx, invitee)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not look up user", err))
		return
	}
	if !exists {
		respond.Err(w, r, h.Log, fault.New(fault.NotFound, "invited user not found"))
		return
	}

	pending, err := h.Invites.FindPending(ctx, id, invitee)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not check invites", err))
		return
	}

	if err := boardpolicy.Invite(b, u.ID, invitee, pending); err != nil {
		respond.Err(w, r, h.Log, err)
		return
	}

	inv := models.BoardInvite{
		BoardID:       id,
		InvitedUserID: invitee,
		InvitedBy:     u.ID,
	}
	created, err := h.Invites.Create(ctx, inv)
	if err != nil {
		if errors.Is(err, invitestore.ErrDuplicatePendingInvite) {
			respond.Err(w, r, h.Log, fault.New(fault.Conflict, "an invite for this user is already pending"))
			return
		}
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not create invite", err))
		return
	}

	h.Log.Info("board invite created",
		zap.String("board_id", id.Hex()),
		zap.String("invited_user_id", invitee.Hex()),
		zap.String("invited_by", u.ID.Hex()))
	respond.JSON(w, http.StatusCreated, inviteViewOf(created))
}

// ServeInvites handles GET /boards/{id}/invites. Members only.
func (h *Handler) ServeInvites(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.Invites.ListForBoard(ctx, id)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not list invites", err))
		return
	}

	views := make([]inviteView, 0, len(list))
	for _, inv := range list {
		views = append(views, inviteViewOf(inv))
	}
	respond.JSON(w, http.StatusOK, views)
}
