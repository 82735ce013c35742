// internal/app/features/boards/cover.go
package boards

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCoverBytes caps cover photo uploads.
const maxCoverBytes = 10 << 20

var coverExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// uploadCover stores a cover photo under a unique object key
// (covers/YYYY/MM/uuid.ext) and returns the key and public URL.
func (h *Handler) uploadCover(ctx context.Context, file multipart.File, hdr *multipart.FileHeader) (path, url string, err error) {
	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !coverExtensions[ext] {
		return "", "", fault.New(fault.Validation, "cover photo must be a jpg, png, gif, or webp image")
	}

	now := time.Now().UTC()
	path = fmt.Sprintf("covers/%04d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)

	opts := &storage.PutOptions{ContentType: hdr.Header.Get("Content-Type")}
	if err := h.Assets.Put(ctx, path, file, opts); err != nil {
		return "", "", fault.Wrap(fault.Transient, "cover photo upload failed", err)
	}

	return path, strings.TrimRight(h.PublicURL, "/") + "/" + path, nil
}

// cleanupDeletedBoard releases a deleted board's cover asset and feed.
// Failures here are warnings, never request failures: the board record is
// already gone and the caller's leave has succeeded.
func (h *Handler) cleanupDeletedBoard(ctx context.Context, b models.Board) {
	if b.CoverPhotoPath != "" {
		if err := h.Assets.Delete(ctx, b.CoverPhotoPath); err != nil {
			if isNotExist(err) {
				// Already removed; nothing to release.
				h.Log.Debug("cover asset already absent",
					zap.String("board_id", b.ID.Hex()),
					zap.String("path", b.CoverPhotoPath))
			} else {
				h.Log.Warn("cover asset delete failed",
					zap.String("board_id", b.ID.Hex()),
					zap.String("path", b.CoverPhotoPath),
					zap.Error(err))
			}
		}
	}

	if h.Posts != nil {
		if n, err := h.Posts.DeleteByBoard(ctx, b.ID); err != nil {
			h.Log.Warn("feed cleanup failed",
				zap.String("board_id", b.ID.Hex()),
				zap.Error(err))
		} else if n > 0 {
			h.Log.Info("deleted board feed",
				zap.String("board_id", b.ID.Hex()),
				zap.Int64("posts", n))
		}
	}
}

// isNotExist reports whether an asset deletion failed only because the
// object was already gone, which counts as success. Both storage backends
// signal absence with storage.ErrNotFound.
func isNotExist(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
