// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/corkboardhq/corkboard/internal/app/system/auth"
)

// Handler serves the caller's identity.
type Handler struct{}

// NewHandler creates a userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeUserInfo handles GET /me. Unauthenticated callers get a 200 with
// is_authenticated false, so front ends can probe session state without
// triggering error handling.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	u, ok := auth.CurrentUser(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"is_authenticated": false,
			"id":               "",
			"name":             "",
			"email":            "",
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"is_authenticated": true,
		"id":               u.ID.Hex(),
		"name":             u.Name,
		"email":            u.Email,
	})
}
