package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewSessionUser returns a SessionUser with a fresh identity, for handler
// tests that bypass the session middleware.
func NewSessionUser(name string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Email: name + "@test.example",
	}
}

// AuthenticatedRequest creates a request with the user already in context.
func AuthenticatedRequest(method, target string, body io.Reader, u *auth.SessionUser) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return auth.WithTestUser(req, u)
}

// WithChiURLParam adds a chi URL parameter to the request context, for
// handler tests that call a handler method directly instead of going
// through the router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
