// internal/app/features/boards/create.go
package boards

import (
	"context"
	"net/http"

	"github.com/corkboardhq/corkboard/internal/app/policy/boardpolicy"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/htmlsanitize"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"go.uber.org/zap"
)

// HandleCreate processes POST /boards: a multipart form with title,
// description, and a required cover_photo upload. The creator becomes
// owner and sole member.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Err(w, r, h.Log, fault.New(fault.Unauthenticated, "sign in required"))
		return
	}

	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "expected a multipart form"))
		return
	}

	title := r.FormValue("title")
	description := htmlsanitize.UGC(r.FormValue("description"))

	file, hdr, err := r.FormFile("cover_photo")
	if err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "a cover photo is required"))
		return
	}
	defer file.Close()

	// Decide before uploading so an invalid title costs no storage I/O.
	b, err := boardpolicy.CreateBoard(u.ID, title, description, "")
	if err != nil {
		respond.Err(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	path, url, err := h.uploadCover(ctx, file, hdr)
	if err != nil {
		respond.Err(w, r, h.Log, err)
		return
	}
	b.CoverPhotoPath = path
	b.CoverPhotoURL = url

	created, err := h.Boards.Create(ctx, b)
	if err != nil {
		// The board was never persisted; release the orphaned upload.
		if delErr := h.Assets.Delete(ctx, path); delErr != nil && !isNotExist(delErr) {
			h.Log.Warn("orphaned cover cleanup failed",
				zap.String("path", path), zap.Error(delErr))
		}
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not create board", err))
		return
	}

	h.Log.Info("board created",
		zap.String("board_id", created.ID.Hex()),
		zap.String("title", created.Title),
		zap.String("owner_id", u.ID.Hex()))

	respond.JSON(w, http.StatusCreated, viewOf(created, u.ID))
}
