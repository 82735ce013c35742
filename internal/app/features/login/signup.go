// internal/app/features/login/signup.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/htmlsanitize"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
)

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup handles POST /auth/signup. A new account is signed in
// immediately.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "malformed request body"))
		return
	}

	fullName := htmlsanitize.Plain(req.FullName)
	if fullName == "" {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "full name is required"))
		return
	}
	email := userstore.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		respond.Err(w, r, h.Log, fault.New(fault.Validation, "a valid email is required"))
		return
	}
	if len(req.Password) < minPasswordLength {
		respond.Err(w, r, h.Log, fault.Newf(fault.Validation, "password must be at least %d characters", minPasswordLength))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not hash password", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     fullName,
		Email:        email,
		AuthMethod:   models.AuthPassword,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			respond.Err(w, r, h.Log, fault.New(fault.Conflict, "an account with this email already exists"))
			return
		}
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not create account", err))
		return
	}

	token, err := h.Sessions.IssueSession(w, r, u.ID)
	if err != nil {
		respond.Err(w, r, h.Log, fault.Wrap(fault.Transient, "could not start session", err))
		return
	}

	h.Log.Info("account created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))
	respond.JSON(w, http.StatusCreated, sessionResponse{Token: token, User: viewOf(u)})
}
