package invitestore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	invitestore "github.com/corkboardhq/corkboard/internal/app/store/invites"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/corkboardhq/corkboard/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boardID := primitive.NewObjectID()
	invitee := primitive.NewObjectID()
	inviter := primitive.NewObjectID()

	inv, err := store.Create(ctx, models.BoardInvite{
		BoardID:       boardID,
		InvitedUserID: invitee,
		InvitedBy:     inviter,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if inv.Status != models.InvitePending {
		t.Errorf("status = %q, want %q", inv.Status, models.InvitePending)
	}

	// The partial unique index rejects a second pending invite.
	_, err = store.Create(ctx, models.BoardInvite{
		BoardID:       boardID,
		InvitedUserID: invitee,
		InvitedBy:     inviter,
	})
	if !errors.Is(err, invitestore.ErrDuplicatePendingInvite) {
		t.Errorf("duplicate create: err = %v, want ErrDuplicatePendingInvite", err)
	}

	// A different invitee on the same board is fine.
	if _, err := store.Create(ctx, models.BoardInvite{
		BoardID:       boardID,
		InvitedUserID: primitive.NewObjectID(),
		InvitedBy:     inviter,
	}); err != nil {
		t.Fatalf("second invitee create failed: %v", err)
	}
}

func TestStore_MarkAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boardID := primitive.NewObjectID()
	invitee := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.BoardInvite{
		BoardID:       boardID,
		InvitedUserID: invitee,
		InvitedBy:     primitive.NewObjectID(),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkAccepted(ctx, boardID, invitee); err != nil {
		t.Fatalf("MarkAccepted failed: %v", err)
	}

	pending, err := store.FindPending(ctx, boardID, invitee)
	if err != nil {
		t.Fatalf("FindPending failed: %v", err)
	}
	if pending != nil {
		t.Error("invite still pending after MarkAccepted")
	}

	list, err := store.ListForBoard(ctx, boardID)
	if err != nil {
		t.Fatalf("ListForBoard failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Status != models.InviteAccepted || list[0].ResolvedAt == nil {
		t.Errorf("invite = %+v, want accepted with resolved_at", list[0])
	}

	// With the pending invite resolved, the same user can be invited again.
	if _, err := store.Create(ctx, models.BoardInvite{
		BoardID:       boardID,
		InvitedUserID: invitee,
		InvitedBy:     primitive.NewObjectID(),
	}); err != nil {
		t.Fatalf("re-invite after accept failed: %v", err)
	}
}

func TestStore_FindPendingAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pending, err := store.FindPending(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("FindPending failed: %v", err)
	}
	if pending != nil {
		t.Errorf("pending = %+v, want nil", pending)
	}
}

func TestStore_MarkAcceptedNoPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// No pending invite: a no-op, not an error.
	if err := store.MarkAccepted(ctx, primitive.NewObjectID(), primitive.NewObjectID()); err != nil {
		t.Fatalf("MarkAccepted without pending invite failed: %v", err)
	}
}
