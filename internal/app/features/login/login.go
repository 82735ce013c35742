// internal/app/features/login/login.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login. Wrong email and wrong password
// produce the same response, so the endpoint does not confirm which
// emails have accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	badCredentials := fault.New(fault.Unauthenticated, "invalid email or password")

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			respond.Err(w, r, h.Log, badCredentials)
			return
		}
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not look up account", err))
		return
	}

	if u.AuthMethod != models.AuthPassword || len(u.PasswordHash) == 0 {
		respond.Err(w, r, h.Log, badCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)); err != nil {
		respond.Err(w, r, h.Log, badCredentials)
		return
	}

	token, err := h.Sessions.IssueSession(w, r, u.ID)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not start session", err))
		return
	}

	h.Log.Info("signed in", zap.String("user_id", u.ID.Hex()))
	respond.JSON(w, http.StatusOK, sessionResponse{Token: token, User: viewOf(u)})
}

// HandleLogout handles POST /auth/logout. Revokes the bearer token and
// clears the cookie session. Always succeeds.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}
