// internal/app/features/boards/handler_test.go
package boards_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/corkboardhq/corkboard/internal/app/features/boards"
	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	invitestore "github.com/corkboardhq/corkboard/internal/app/store/invites"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/corkboardhq/corkboard/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
)

// fakeBoards mirrors the guarded and versioned write semantics of the
// mongo-backed store so the handlers' conflict handling can be exercised
// without a database.
type fakeBoards struct {
	mu     sync.Mutex
	boards map[primitive.ObjectID]models.Board

	// forceAddMisses makes the next N AddMember calls miss their guard,
	// as if a concurrent request changed the board.
	forceAddMisses int
	// forceStale makes the next N ReplaceVersioned calls report a
	// version conflict.
	forceStale int
}

func newFakeBoards() *fakeBoards {
	return &fakeBoards{boards: make(map[primitive.ObjectID]models.Board)}
}

func (f *fakeBoards) put(b models.Board) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boards[b.ID] = b
}

func (f *fakeBoards) Create(_ context.Context, b models.Board) (models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = primitive.NewObjectID()
	b.Version = 1
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	f.boards[b.ID] = b
	return b, nil
}

func (f *fakeBoards) GetByID(_ context.Context, id primitive.ObjectID) (models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[id]
	if !ok {
		return models.Board{}, boardstore.ErrNotFound
	}
	return b, nil
}

func (f *fakeBoards) AddMember(_ context.Context, boardID, userID primitive.ObjectID) (models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceAddMisses > 0 {
		f.forceAddMisses--
		return models.Board{}, boardstore.ErrNoMatch
	}
	b, ok := f.boards[boardID]
	if !ok || b.OwnerID == userID || containsID(b.Members, userID) {
		return models.Board{}, boardstore.ErrNoMatch
	}
	b.Members = append(b.Members, userID)
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	f.boards[boardID] = b
	return b, nil
}

func (f *fakeBoards) RemoveMember(_ context.Context, boardID, ownerID, targetID primitive.ObjectID) (models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.boards[boardID]
	if !ok || b.OwnerID != ownerID || b.OwnerID == targetID || !containsID(b.Members, targetID) {
		return models.Board{}, boardstore.ErrNoMatch
	}
	kept := b.Members[:0:0]
	for _, m := range b.Members {
		if m != targetID {
			kept = append(kept, m)
		}
	}
	b.Members = kept
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	f.boards[boardID] = b
	return b, nil
}

func (f *fakeBoards) ReplaceVersioned(_ context.Context, b models.Board) (models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceStale > 0 {
		f.forceStale--
		return models.Board{}, boardstore.ErrStale
	}
	cur, ok := f.boards[b.ID]
	if !ok || cur.Version != b.Version {
		return models.Board{}, boardstore.ErrStale
	}
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	f.boards[b.ID] = b
	return b, nil
}

func (f *fakeBoards) DeleteVersioned(_ context.Context, id primitive.ObjectID, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.boards[id]
	if !ok || cur.Version != version {
		return boardstore.ErrStale
	}
	delete(f.boards, id)
	return nil
}

func (f *fakeBoards) ListForUser(_ context.Context, userID primitive.ObjectID) ([]models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Board
	for _, b := range f.boards {
		if b.OwnerID == userID || containsID(b.Members, userID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeInvites struct {
	mu      sync.Mutex
	invites []models.BoardInvite
}

func (f *fakeInvites) Create(_ context.Context, inv models.BoardInvite) (models.BoardInvite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cur := range f.invites {
		if cur.BoardID == inv.BoardID && cur.InvitedUserID == inv.InvitedUserID && cur.Status == models.InvitePending {
			return models.BoardInvite{}, invitestore.ErrDuplicatePendingInvite
		}
	}
	inv.ID = primitive.NewObjectID()
	inv.Status = models.InvitePending
	inv.CreatedAt = time.Now().UTC()
	f.invites = append(f.invites, inv)
	return inv, nil
}

func (f *fakeInvites) FindPending(_ context.Context, boardID, userID primitive.ObjectID) (*models.BoardInvite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invites {
		inv := f.invites[i]
		if inv.BoardID == boardID && inv.InvitedUserID == userID && inv.Status == models.InvitePending {
			return &inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvites) MarkAccepted(_ context.Context, boardID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for i := range f.invites {
		if f.invites[i].BoardID == boardID && f.invites[i].InvitedUserID == userID && f.invites[i].Status == models.InvitePending {
			f.invites[i].Status = models.InviteAccepted
			f.invites[i].ResolvedAt = &now
		}
	}
	return nil
}

func (f *fakeInvites) ListForBoard(_ context.Context, boardID primitive.ObjectID) ([]models.BoardInvite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BoardInvite
	for _, inv := range f.invites {
		if inv.BoardID == boardID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	known map[primitive.ObjectID]bool
}

func newFakeUsers(ids ...primitive.ObjectID) *fakeUsers {
	f := &fakeUsers{known: make(map[primitive.ObjectID]bool)}
	for _, id := range ids {
		f.known[id] = true
	}
	return f
}

func (f *fakeUsers) add(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.known[id] = true
}

func (f *fakeUsers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.known[id], nil
}

type fakeAssets struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	// deleteErr, when set, is returned by every Delete call.
	deleteErr error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{objects: make(map[string][]byte)}
}

func (f *fakeAssets) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = data
	return nil
}

func (f *fakeAssets) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.objects[path]; !ok {
		return storage.ErrNotFound
	}
	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

type fakePosts struct {
	mu     sync.Mutex
	counts map[primitive.ObjectID]int64
	purged []primitive.ObjectID
}

func newFakePosts() *fakePosts {
	return &fakePosts{counts: make(map[primitive.ObjectID]int64)}
}

func (f *fakePosts) DeleteByBoard(_ context.Context, boardID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.counts[boardID]
	delete(f.counts, boardID)
	f.purged = append(f.purged, boardID)
	return n, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type env struct {
	handler *boards.Handler
	boards  *fakeBoards
	invites *fakeInvites
	users   *fakeUsers
	assets  *fakeAssets
	posts   *fakePosts
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		boards:  newFakeBoards(),
		invites: &fakeInvites{},
		users:   newFakeUsers(),
		assets:  newFakeAssets(),
		posts:   newFakePosts(),
	}
	e.handler = boards.NewHandler(e.boards, e.invites, e.users, e.assets, e.posts,
		"https://cdn.test.example", zap.NewNop())
	return e
}

// seedBoard stores a board owned by owner with the given extra members.
func (e *env) seedBoard(t *testing.T, owner *auth.SessionUser, members ...primitive.ObjectID) models.Board {
	t.Helper()
	b := models.Board{
		ID:        primitive.NewObjectID(),
		Title:     "Trip Planning",
		OwnerID:   owner.ID,
		Members:   append([]primitive.ObjectID{owner.ID}, members...),
		Version:   1,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	e.boards.put(b)
	return b
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) boards.BoardView {
	t.Helper()
	var v boards.BoardView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode board view: %v", err)
	}
	return v
}

func multipartBoard(t *testing.T, title, description, coverName string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		t.Fatalf("write title: %v", err)
	}
	if description != "" {
		if err := mw.WriteField("description", description); err != nil {
			t.Fatalf("write description: %v", err)
		}
	}
	if coverName != "" {
		fw, err := mw.CreateFormFile("cover_photo", coverName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("not really image bytes")); err != nil {
			t.Fatalf("write cover: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestCreateBoard(t *testing.T) {
	e := newEnv(t)
	u := testutil.NewSessionUser("ada")

	body, contentType := multipartBoard(t, "  Garden Swap  ", "<p>seeds</p><script>x()</script>", "cover.png")
	req := testutil.AuthenticatedRequest(http.MethodPost, "/boards", body, u)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	e.handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	v := decodeView(t, rec)
	if v.Title != "Garden Swap" {
		t.Errorf("title = %q, want trimmed %q", v.Title, "Garden Swap")
	}
	if strings.Contains(v.Description, "<script>") {
		t.Errorf("description was not sanitized: %q", v.Description)
	}
	if !v.IsOwner || !v.IsJoined {
		t.Errorf("creator should be owner and joined, got is_owner=%v is_joined=%v", v.IsOwner, v.IsJoined)
	}
	if v.MemberCount != 1 {
		t.Errorf("member_count = %d, want 1", v.MemberCount)
	}
	if !strings.HasPrefix(v.CoverPhotoURL, "https://cdn.test.example/covers/") {
		t.Errorf("cover_photo_url = %q, want cdn prefix", v.CoverPhotoURL)
	}
	if len(e.assets.objects) != 1 {
		t.Errorf("stored assets = %d, want 1", len(e.assets.objects))
	}
}

func TestCreateBoardValidation(t *testing.T) {
	t.Run("missing cover photo", func(t *testing.T) {
		e := newEnv(t)
		u := testutil.NewSessionUser("ada")
		body, contentType := multipartBoard(t, "Garden Swap", "", "")
		req := testutil.AuthenticatedRequest(http.MethodPost, "/boards", body, u)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		e.handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("empty title uploads nothing", func(t *testing.T) {
		e := newEnv(t)
		u := testutil.NewSessionUser("ada")
		body, contentType := multipartBoard(t, "   ", "", "cover.png")
		req := testutil.AuthenticatedRequest(http.MethodPost, "/boards", body, u)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		e.handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if len(e.assets.objects) != 0 {
			t.Errorf("rejected create still uploaded %d assets", len(e.assets.objects))
		}
	})

	t.Run("unsupported cover extension", func(t *testing.T) {
		e := newEnv(t)
		u := testutil.NewSessionUser("ada")
		body, contentType := multipartBoard(t, "Garden Swap", "", "cover.exe")
		req := testutil.AuthenticatedRequest(http.MethodPost, "/boards", body, u)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		e.handler.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func joinRequest(u *auth.SessionUser, boardID primitive.ObjectID) *http.Request {
	req := testutil.AuthenticatedRequest(http.MethodPost,
		fmt.Sprintf("/boards/%s/join", boardID.Hex()), nil, u)
	return testutil.WithChiURLParam(req, "id", boardID.Hex())
}

func TestJoin(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	joiner := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner)

	// A pending invite should be resolved by the join.
	_, err := e.invites.Create(context.Background(), models.BoardInvite{
		BoardID: b.ID, InvitedUserID: joiner.ID, InvitedBy: owner.ID,
	})
	if err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	rec := httptest.NewRecorder()
	e.handler.HandleJoin(rec, joinRequest(joiner, b.ID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	v := decodeView(t, rec)
	if v.MemberCount != 2 {
		t.Errorf("member_count = %d, want 2", v.MemberCount)
	}
	if !v.IsJoined || v.IsOwner {
		t.Errorf("joiner view: is_joined=%v is_owner=%v", v.IsJoined, v.IsOwner)
	}
	// Join order: owner first, joiner second.
	if v.Members[len(v.Members)-1] != joiner.ID.Hex() {
		t.Errorf("joiner should be last in member order, got %v", v.Members)
	}

	inv, err := e.invites.FindPending(context.Background(), b.ID, joiner.ID)
	if err != nil {
		t.Fatalf("find pending: %v", err)
	}
	if inv != nil {
		t.Error("pending invite survived an independent join")
	}
}

func TestJoinAlreadyMember(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner, member.ID)

	for name, caller := range map[string]*auth.SessionUser{"owner": owner, "member": member} {
		rec := httptest.NewRecorder()
		e.handler.HandleJoin(rec, joinRequest(caller, b.ID))
		if rec.Code != http.StatusConflict {
			t.Errorf("%s rejoin: status = %d, want %d", name, rec.Code, http.StatusConflict)
		}
	}
}

func TestJoinUnknownBoard(t *testing.T) {
	e := newEnv(t)
	u := testutil.NewSessionUser("ada")

	rec := httptest.NewRecorder()
	e.handler.HandleJoin(rec, joinRequest(u, primitive.NewObjectID()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestJoinRetriesAfterConcurrentUpdate(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	joiner := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner)

	e.boards.forceAddMisses = 1
	rec := httptest.NewRecorder()
	e.handler.HandleJoin(rec, joinRequest(joiner, b.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("one guard miss should be retried through, got %d: %s", rec.Code, rec.Body)
	}

	// Exhausting every attempt surfaces as a retryable failure.
	late := testutil.NewSessionUser("linus")
	e.boards.forceAddMisses = 10
	rec = httptest.NewRecorder()
	e.handler.HandleJoin(rec, joinRequest(late, b.ID))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("exhausted retries: status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func kickRequest(t *testing.T, u *auth.SessionUser, boardID, target primitive.ObjectID) *http.Request {
	t.Helper()
	req := testutil.AuthenticatedRequest(http.MethodPost,
		fmt.Sprintf("/boards/%s/kick", boardID.Hex()),
		jsonBody(t, map[string]string{"target_id": target.Hex()}), u)
	return testutil.WithChiURLParam(req, "id", boardID.Hex())
}

func TestKickByOwner(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner, member.ID)

	rec := httptest.NewRecorder()
	e.handler.HandleKick(rec, kickRequest(t, owner, b.ID, member.ID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	v := decodeView(t, rec)
	if v.MemberCount != 1 {
		t.Errorf("member_count = %d, want 1", v.MemberCount)
	}
	for _, m := range v.Members {
		if m == member.ID.Hex() {
			t.Error("kicked member still present")
		}
	}
}

func TestKickAuthorization(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	other := testutil.NewSessionUser("linus")
	b := e.seedBoard(t, owner, member.ID, other.ID)

	cases := []struct {
		name   string
		caller *auth.SessionUser
		target primitive.ObjectID
		want   int
	}{
		{"non-owner cannot kick", member, other.ID, http.StatusForbidden},
		{"owner cannot be kicked", owner, owner.ID, http.StatusUnprocessableEntity},
		{"target must be a member", owner, primitive.NewObjectID(), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.handler.HandleKick(rec, kickRequest(t, tc.caller, b.ID, tc.target))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func leaveRequest(t *testing.T, u *auth.SessionUser, boardID primitive.ObjectID, newOwner string) *http.Request {
	t.Helper()
	var body io.Reader
	if newOwner != "" {
		body = jsonBody(t, map[string]string{"new_owner_id": newOwner})
	}
	req := testutil.AuthenticatedRequest(http.MethodPost,
		fmt.Sprintf("/boards/%s/leave", boardID.Hex()), body, u)
	return testutil.WithChiURLParam(req, "id", boardID.Hex())
}

func decodeLeave(t *testing.T, rec *httptest.ResponseRecorder) (deleted bool, view *boards.BoardView) {
	t.Helper()
	var resp struct {
		Deleted bool              `json:"deleted"`
		Board   *boards.BoardView `json:"board"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode leave response: %v", err)
	}
	return resp.Deleted, resp.Board
}

func TestLeaveMember(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner, member.ID)

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, member, b.ID, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	deleted, view := decodeLeave(t, rec)
	if deleted {
		t.Fatal("member leave reported board deletion")
	}
	if view.OwnerID != owner.ID.Hex() {
		t.Errorf("owner changed on member leave: %s", view.OwnerID)
	}
	if view.MemberCount != 1 {
		t.Errorf("member_count = %d, want 1", view.MemberCount)
	}
}

func TestLeaveOwnerTransfersToEarliestMember(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	second := testutil.NewSessionUser("grace")
	third := testutil.NewSessionUser("linus")
	b := e.seedBoard(t, owner, second.ID, third.ID)

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, owner, b.ID, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	deleted, view := decodeLeave(t, rec)
	if deleted {
		t.Fatal("transfer reported as deletion")
	}
	if view.OwnerID != second.ID.Hex() {
		t.Errorf("new owner = %s, want earliest-joined %s", view.OwnerID, second.ID.Hex())
	}
	if view.MemberCount != 2 {
		t.Errorf("member_count = %d, want 2", view.MemberCount)
	}
}

func TestLeaveOwnerHonorsRequestedSuccessor(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	second := testutil.NewSessionUser("grace")
	third := testutil.NewSessionUser("linus")
	b := e.seedBoard(t, owner, second.ID, third.ID)

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, owner, b.ID, third.ID.Hex()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	_, view := decodeLeave(t, rec)
	if view.OwnerID != third.ID.Hex() {
		t.Errorf("new owner = %s, want requested %s", view.OwnerID, third.ID.Hex())
	}
}

func TestLeaveLastOwnerDeletesBoard(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	b := e.seedBoard(t, owner)
	b.CoverPhotoPath = "covers/2026/08/abc.png"
	e.boards.put(b)
	e.assets.objects[b.CoverPhotoPath] = []byte("img")
	e.posts.counts[b.ID] = 4

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, owner, b.ID, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	deleted, view := decodeLeave(t, rec)
	if !deleted || view != nil {
		t.Fatalf("want deleted response without board, got deleted=%v board=%v", deleted, view)
	}
	if _, err := e.boards.GetByID(context.Background(), b.ID); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("board still present after last owner left: %v", err)
	}
	if _, ok := e.assets.objects[b.CoverPhotoPath]; ok {
		t.Error("cover asset survived board deletion")
	}
	if len(e.posts.purged) != 1 || e.posts.purged[0] != b.ID {
		t.Errorf("feed purge = %v, want [%s]", e.posts.purged, b.ID.Hex())
	}
}

func TestLeaveDeletionCoverAlreadyGone(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	b := e.seedBoard(t, owner)
	// The board references a cover that is no longer in the store.
	b.CoverPhotoPath = "covers/2026/08/abc.png"
	e.boards.put(b)

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, owner, b.ID, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if _, err := e.boards.GetByID(context.Background(), b.ID); !errors.Is(err, boardstore.ErrNotFound) {
		t.Errorf("board still present after last owner left: %v", err)
	}
}

func TestLeaveDeletionSurvivesCleanupFailure(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	b := e.seedBoard(t, owner)
	b.CoverPhotoPath = "covers/2026/08/abc.png"
	e.boards.put(b)
	e.assets.deleteErr = errors.New("storage offline")

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, owner, b.ID, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup failure leaked into response: %d %s", rec.Code, rec.Body)
	}
	deleted, _ := decodeLeave(t, rec)
	if !deleted {
		t.Fatal("board deletion not reported")
	}
}

func TestLeaveNonMember(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	stranger := testutil.NewSessionUser("mallory")
	b := e.seedBoard(t, owner)

	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, stranger, b.ID, ""))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestLeaveRetriesAfterStaleWrite(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner, member.ID)

	e.boards.forceStale = 1
	rec := httptest.NewRecorder()
	e.handler.HandleLeave(rec, leaveRequest(t, owner, b.ID, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("one stale write should be retried through, got %d: %s", rec.Code, rec.Body)
	}

	got, err := e.boards.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("board gone after transfer: %v", err)
	}
	if got.OwnerID != member.ID {
		t.Errorf("owner = %s, want %s", got.OwnerID.Hex(), member.ID.Hex())
	}
}

func inviteRequest(t *testing.T, u *auth.SessionUser, boardID, invitee primitive.ObjectID) *http.Request {
	t.Helper()
	req := testutil.AuthenticatedRequest(http.MethodPost,
		fmt.Sprintf("/boards/%s/invites", boardID.Hex()),
		jsonBody(t, map[string]string{"invited_user_id": invitee.Hex()}), u)
	return testutil.WithChiURLParam(req, "id", boardID.Hex())
}

func TestInvite(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	invitee := testutil.NewSessionUser("linus")
	e.users.add(invitee.ID)
	b := e.seedBoard(t, owner, member.ID)

	// Any member may invite, not just the owner.
	rec := httptest.NewRecorder()
	e.handler.HandleInvite(rec, inviteRequest(t, member, b.ID, invitee.ID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var created struct {
		Status        string `json:"status"`
		InvitedUserID string `json:"invited_user_id"`
		InvitedBy     string `json:"invited_by"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode invite: %v", err)
	}
	if created.Status != models.InvitePending {
		t.Errorf("status = %q, want %q", created.Status, models.InvitePending)
	}
	if created.InvitedUserID != invitee.ID.Hex() || created.InvitedBy != member.ID.Hex() {
		t.Errorf("invite identities wrong: %+v", created)
	}

	// A second invite for the same invitee conflicts while one is pending.
	rec = httptest.NewRecorder()
	e.handler.HandleInvite(rec, inviteRequest(t, owner, b.ID, invitee.ID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate pending invite: status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestInviteRules(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	member := testutil.NewSessionUser("grace")
	stranger := testutil.NewSessionUser("mallory")
	e.users.add(member.ID)
	b := e.seedBoard(t, owner, member.ID)

	t.Run("non-member cannot invite", func(t *testing.T) {
		invitee := testutil.NewSessionUser("linus")
		e.users.add(invitee.ID)
		rec := httptest.NewRecorder()
		e.handler.HandleInvite(rec, inviteRequest(t, stranger, b.ID, invitee.ID))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("invitee must exist", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.handler.HandleInvite(rec, inviteRequest(t, owner, b.ID, primitive.NewObjectID()))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("existing member cannot be invited", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.handler.HandleInvite(rec, inviteRequest(t, owner, b.ID, member.ID))
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})
}

func TestServeInvitesMembersOnly(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	stranger := testutil.NewSessionUser("mallory")
	b := e.seedBoard(t, owner)

	get := func(u *auth.SessionUser) *httptest.ResponseRecorder {
		req := testutil.AuthenticatedRequest(http.MethodGet,
			fmt.Sprintf("/boards/%s/invites", b.ID.Hex()), nil, u)
		req = testutil.WithChiURLParam(req, "id", b.ID.Hex())
		rec := httptest.NewRecorder()
		e.handler.ServeInvites(rec, req)
		return rec
	}

	if rec := get(owner); rec.Code != http.StatusOK {
		t.Fatalf("member list: status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := get(stranger); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger list: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeBoard(t *testing.T) {
	e := newEnv(t)
	owner := testutil.NewSessionUser("ada")
	viewer := testutil.NewSessionUser("grace")
	b := e.seedBoard(t, owner)

	get := func(id string) *httptest.ResponseRecorder {
		req := testutil.AuthenticatedRequest(http.MethodGet, "/boards/"+id, nil, viewer)
		req = testutil.WithChiURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		e.handler.ServeBoard(rec, req)
		return rec
	}

	rec := get(b.ID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	v := decodeView(t, rec)
	if v.IsJoined || v.IsOwner {
		t.Errorf("non-member view: is_joined=%v is_owner=%v", v.IsJoined, v.IsOwner)
	}

	if rec := get(primitive.NewObjectID().Hex()); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown board: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := get("not-an-id"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeListOnlyCallersBoards(t *testing.T) {
	e := newEnv(t)
	ada := testutil.NewSessionUser("ada")
	grace := testutil.NewSessionUser("grace")
	mine := e.seedBoard(t, ada)
	joined := e.seedBoard(t, grace, ada.ID)
	e.seedBoard(t, grace) // not ada's

	req := testutil.AuthenticatedRequest(http.MethodGet, "/boards", nil, ada)
	rec := httptest.NewRecorder()
	e.handler.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var list []boards.BoardView
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	want := map[string]bool{mine.ID.Hex(): true, joined.ID.Hex(): true}
	for _, v := range list {
		if !want[v.ID] {
			t.Errorf("unexpected board in list: %s", v.ID)
		}
	}
}

func TestUnauthenticated(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID().Hex()

	calls := map[string]func(http.ResponseWriter, *http.Request){
		"create":  e.handler.HandleCreate,
		"list":    e.handler.ServeList,
		"view":    e.handler.ServeBoard,
		"join":    e.handler.HandleJoin,
		"leave":   e.handler.HandleLeave,
		"kick":    e.handler.HandleKick,
		"invite":  e.handler.HandleInvite,
		"invites": e.handler.ServeInvites,
	}
	for name, fn := range calls {
		req := httptest.NewRequest(http.MethodPost, "/boards/"+id, nil)
		req = testutil.WithChiURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		fn(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without session: status = %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
	}
}
