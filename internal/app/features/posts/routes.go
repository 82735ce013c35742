// internal/app/features/posts/routes.go
package posts

import (
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the feed router, mounted under /boards/{id}/posts.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeFeed)

	return r
}
