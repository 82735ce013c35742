// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/corkboardhq/corkboard/internal/app/store/oauthstate"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/models"
)

// stateTTL bounds how long a started OAuth flow stays valid.
const stateTTL = 10 * time.Minute

// Handler handles Google sign-in. An account is created on first login,
// so there is no separate Google signup flow.
type Handler struct {
	Users      *userstore.Store
	StateStore *oauthstate.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewHandler creates a Google sign-in handler. baseURL is the externally
// visible origin, e.g. "https://corkboard.example".
func NewHandler(users *userstore.Store, states *oauthstate.Store, sessionMgr *auth.SessionManager, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		StateStore:   states,
		SessionMgr:   sessionMgr,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google sign-in is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google: stores a one-shot state record and
// redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google sign-in not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("state generation failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("state save failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates the state,
// exchanges the code, fetches the Google profile, upserts the account, and
// starts a session.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google sign-in denied",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	shortCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	valid, err := h.StateStore.Validate(shortCtx, state)
	if err != nil {
		h.Log.Error("state validation failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("code exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	profile, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("Google profile fetch failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	if profile.Email == "" || !profile.EmailVerified {
		h.Log.Warn("Google profile has no verified email")
		http.Redirect(w, r, "/login?error=unverified_email", http.StatusSeeOther)
		return
	}

	u, err := h.upsertUser(shortCtx, profile)
	if err != nil {
		if errors.Is(err, errWrongAuthMethod) {
			http.Redirect(w, r, "/login?error=email_uses_password", http.StatusSeeOther)
			return
		}
		h.Log.Error("Google account upsert failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if _, err := h.SessionMgr.IssueSession(w, r, u.ID); err != nil {
		h.Log.Error("session issue failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	h.Log.Info("signed in via Google",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// errWrongAuthMethod marks an email already registered with a password.
var errWrongAuthMethod = errors.New("email registered with password auth")

// upsertUser returns the account for the Google profile, creating it on
// first login. An email owned by a password account is never taken over.
func (h *Handler) upsertUser(ctx context.Context, profile *googleUserInfo) (models.User, error) {
	u, err := h.Users.GetByEmail(ctx, profile.Email)
	if err == nil {
		if u.AuthMethod != models.AuthGoogle {
			return models.User{}, errWrongAuthMethod
		}
		return u, nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, err
	}

	name := profile.Name
	if name == "" {
		name = profile.Email
	}
	created, err := h.Users.Create(ctx, models.User{
		FullName:   name,
		Email:      profile.Email,
		AuthMethod: models.AuthGoogle,
	})
	if err != nil {
		// A concurrent first login may have created the account.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return h.Users.GetByEmail(ctx, profile.Email)
		}
		return models.User{}, err
	}
	h.Log.Info("account created via Google",
		zap.String("user_id", created.ID.Hex()),
		zap.String("email", created.Email))
	return created, nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves the profile from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
