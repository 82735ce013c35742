// Package auth resolves a caller identity before any board logic runs.
//
// Two credentials are accepted: an opaque bearer token (Authorization:
// Bearer <token>, backed by the sessions collection) for API clients, and
// the browser cookie session for the web front end. Both resolve to the
// same SessionUser injected into the request context.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sessionstore "github.com/corkboardhq/corkboard/internal/app/store/sessions"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/respond"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// SessionUser is the resolved caller injected into r.Context().
// ID is the user's ObjectID, so ownership and membership checks compare
// typed identities, never raw strings.
type SessionUser struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the caller and whether one was resolved.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a caller directly, bypassing the middleware.
// For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager issues and resolves credentials.
type SessionManager struct {
	cookies    *sessions.CookieStore
	cookieName string
	tokens     *sessionstore.Store
	users      *userstore.Store
	log        *zap.Logger
}

// NewSessionManager builds a SessionManager. The session key signs browser
// cookies; bearer tokens are stored server-side and need no signing.
func NewSessionManager(sessionKey, cookieName, domain string, secure bool, tokens *sessionstore.Store, users *userstore.Store, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{
		cookies:    store,
		cookieName: cookieName,
		tokens:     tokens,
		users:      users,
		log:        logger,
	}, nil
}

// LoadSessionUser resolves the caller from a bearer token or the cookie
// session and injects it into context. Unresolvable credentials leave the
// request unauthenticated; RequireSignedIn decides whether that matters.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := m.resolve(r); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects unauthenticated requests with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Err(w, r, nil, fault.New(fault.Unauthenticated, "sign in required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IssueSession creates a bearer token for the user and sets the cookie
// session alongside it. Returns the token.
func (m *SessionManager) IssueSession(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) (string, error) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sess, err := m.tokens.Create(ctx, userID, sessionstore.DefaultTTL)
	if err != nil {
		return "", err
	}

	cookie, _ := m.cookies.Get(r, m.cookieName)
	cookie.Values[userIDKey] = userID.Hex()
	if err := cookie.Save(r, w); err != nil {
		m.log.Warn("cookie session save failed", zap.Error(err))
	}

	return sess.Token, nil
}

// ClearSession revokes the request's bearer token (if any) and expires the
// cookie session.
func (m *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if err := m.tokens.Delete(ctx, token); err != nil {
			m.log.Warn("session revoke failed", zap.Error(err))
		}
	}

	cookie, _ := m.cookies.Get(r, m.cookieName)
	cookie.Options.MaxAge = -1
	delete(cookie.Values, userIDKey)
	if err := cookie.Save(r, w); err != nil {
		m.log.Warn("cookie session clear failed", zap.Error(err))
	}
}

func (m *SessionManager) resolve(r *http.Request) *SessionUser {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if token := bearerToken(r); token != "" {
		sess, err := m.tokens.Lookup(ctx, token)
		if err != nil {
			if err != sessionstore.ErrNotFound {
				m.log.Warn("bearer token lookup failed", zap.Error(err))
			}
			return nil
		}
		return m.fetch(ctx, sess.UserID)
	}

	cookie, err := m.cookies.Get(r, m.cookieName)
	if err != nil {
		return nil
	}
	hexID, _ := cookie.Values[userIDKey].(string)
	if hexID == "" {
		return nil
	}
	userID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil
	}
	return m.fetch(ctx, userID)
}

// fetch loads fresh user data on every request so deleted accounts lose
// access immediately.
func (m *SessionManager) fetch(ctx context.Context, userID primitive.ObjectID) *SessionUser {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if err != userstore.ErrNotFound {
			m.log.Warn("session user fetch failed", zap.Error(err))
		}
		return nil
	}
	return &SessionUser{ID: u.ID, Name: u.FullName, Email: u.Email}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
