// Package boardpolicy contains the membership and ownership rules for
// boards.
//
// Every function here is a pure decision over an immutable board snapshot:
// no I/O, no clock, no randomness. Given the same (board, caller, args) the
// decision is always the same, which is what lets the boards feature replay
// a decision against a fresh snapshot after a concurrent-update conflict.
//
// Rules:
//   - A board has exactly one owner for as long as it exists; a board whose
//     last member leaves is deleted, never persisted ownerless.
//   - Members is a set; the owner is a member too.
//   - Members is kept in join order, and the ownership-transfer fallback
//     picks the earliest-joined remaining member so the choice is stable.
package boardpolicy

import (
	"strings"

	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateBoard produces a new board owned by creator, with creator as the
// sole member. The title must be non-empty after trimming.
func CreateBoard(creator primitive.ObjectID, title, description, coverURL string) (models.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Board{}, fault.New(fault.Validation, "title is required")
	}
	return models.Board{
		Title:         title,
		Description:   description,
		CoverPhotoURL: coverURL,
		OwnerID:       creator,
		Members:       []primitive.ObjectID{creator},
	}, nil
}

// Join returns the board with caller appended to the member set.
// Joining a board the caller already belongs to is a conflict.
func Join(b models.Board, caller primitive.ObjectID) (models.Board, error) {
	if caller == b.OwnerID || contains(b.Members, caller) {
		return models.Board{}, fault.New(fault.Conflict, "already a member of this board")
	}
	b.Members = append(withoutDuplicates(b.Members), caller)
	return b, nil
}

// Invite authorizes creation of a pending invite from caller to invitee.
// It does not build the invite record; the caller of this function does,
// once authorized.
func Invite(b models.Board, caller, invitee primitive.ObjectID, existingPending *models.BoardInvite) error {
	if !IsMember(b, caller) {
		return fault.New(fault.Forbidden, "only board members can send invites")
	}
	if invitee == b.OwnerID || contains(b.Members, invitee) {
		return fault.New(fault.Conflict, "user is already a member of this board")
	}
	if existingPending != nil {
		return fault.New(fault.Conflict, "an invite for this user is already pending")
	}
	return nil
}

// Kick returns the board with target removed. Only the owner may kick, and
// the owner cannot be kicked.
func Kick(b models.Board, caller, target primitive.ObjectID) (models.Board, error) {
	if caller != b.OwnerID {
		return models.Board{}, fault.New(fault.Forbidden, "only the owner can remove members")
	}
	if target == b.OwnerID {
		return models.Board{}, fault.New(fault.InvalidOperation, "the owner cannot be removed from the board")
	}
	if !contains(b.Members, target) {
		return models.Board{}, fault.New(fault.NotFound, "user is not a member of this board")
	}
	b.Members = without(b.Members, target)
	return b, nil
}

// LeaveOutcome tags the result of a Leave decision.
type LeaveOutcome int

const (
	// LeaveRemoved: an ordinary member left; owner unchanged.
	LeaveRemoved LeaveOutcome = iota

	// LeaveTransferred: the owner left and ownership moved to NewOwner.
	LeaveTransferred

	// LeaveDeleted: the owner was the last member; the board is deleted.
	LeaveDeleted
)

// LeaveResult is the decision produced by Leave. Board and NewOwner are
// meaningful only for the non-deletion outcomes.
type LeaveResult struct {
	Outcome  LeaveOutcome
	Board    models.Board
	NewOwner primitive.ObjectID
}

// Leave decides what happens when caller leaves the board.
//
// requestedNewOwner may be primitive.NilObjectID. When the owner leaves a
// board with other members, ownership transfers to requestedNewOwner if it
// names another current member; otherwise to the earliest-joined remaining
// member, so the operation never fails for lack of an explicit choice.
func Leave(b models.Board, caller, requestedNewOwner primitive.ObjectID) (LeaveResult, error) {
	if caller != b.OwnerID && !contains(b.Members, caller) {
		return LeaveResult{}, fault.New(fault.Forbidden, "not a member of this board")
	}

	remaining := without(withoutDuplicates(b.Members), caller)

	if caller == b.OwnerID {
		if len(remaining) == 0 {
			return LeaveResult{Outcome: LeaveDeleted}, nil
		}
		next := remaining[0]
		if requestedNewOwner != primitive.NilObjectID &&
			requestedNewOwner != caller &&
			contains(remaining, requestedNewOwner) {
			next = requestedNewOwner
		}
		b.OwnerID = next
		b.Members = remaining
		return LeaveResult{Outcome: LeaveTransferred, Board: b, NewOwner: next}, nil
	}

	b.Members = remaining
	return LeaveResult{Outcome: LeaveRemoved, Board: b}, nil
}

// IsMember reports whether u is the owner or a member of b.
func IsMember(b models.Board, u primitive.ObjectID) bool {
	return u == b.OwnerID || contains(b.Members, u)
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// without returns ids with every occurrence of id removed, preserving order.
func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// withoutDuplicates keeps the first occurrence of each id, preserving order.
// A duplicate in a snapshot is an invariant violation from older data; the
// engine repairs it rather than propagating it.
func withoutDuplicates(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
