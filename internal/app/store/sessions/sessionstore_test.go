package sessionstore_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	sessionstore "github.com/corkboardhq/corkboard/internal/app/store/sessions"
	"github.com/corkboardhq/corkboard/internal/testutil"
)

func TestStore_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	sess, err := store.Create(ctx, userID, sessionstore.DefaultTTL)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Create returned empty token")
	}

	got, err := store.Lookup(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got.UserID != userID {
		t.Errorf("user_id = %s, want %s", got.UserID.Hex(), userID.Hex())
	}

	if _, err := store.Lookup(ctx, "never-issued"); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Errorf("unknown token: err = %v, want ErrNotFound", err)
	}
}

func TestStore_LookupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Already-expired sessions are invisible even before the TTL monitor
	// physically removes them.
	sess, err := store.Create(ctx, primitive.NewObjectID(), -time.Minute)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.Lookup(ctx, sess.Token); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Errorf("expired token: err = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Create(ctx, primitive.NewObjectID(), sessionstore.DefaultTTL)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Lookup(ctx, sess.Token); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Errorf("deleted token still resolves: %v", err)
	}
}

func TestStore_DeleteForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, userID, sessionstore.DefaultTTL); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	other, err := store.Create(ctx, primitive.NewObjectID(), sessionstore.DefaultTTL)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.DeleteForUser(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteForUser failed: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}

	// Another user's session survives.
	if _, err := store.Lookup(ctx, other.Token); err != nil {
		t.Errorf("unrelated session removed: %v", err)
	}
}
