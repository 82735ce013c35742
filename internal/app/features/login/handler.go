// internal/app/features/login/handler.go
package login

import (
	"time"

	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"go.uber.org/zap"
)

// minPasswordLength is the shortest password signup accepts.
const minPasswordLength = 8

// Handler provides password signup, login, and logout.
type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

// NewHandler creates a login Handler.
func NewHandler(users *userstore.Store, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Sessions: sessions, Log: logger}
}

// sessionResponse is returned by signup and login: the bearer token for
// API clients (the browser cookie is set alongside it) and the account.
type sessionResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	AuthMethod string    `json:"auth_method"`
	CreatedAt  time.Time `json:"created_at"`
}

func viewOf(u models.User) userView {
	return userView{
		ID:         u.ID.Hex(),
		FullName:   u.FullName,
		Email:      u.Email,
		AuthMethod: u.AuthMethod,
		CreatedAt:  u.CreatedAt,
	}
}
