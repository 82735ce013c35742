// internal/app/features/boards/routes.go
package boards

import (
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the board lifecycle routes. Every route requires a
// signed-in caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeBoard)

	r.Post("/{id}/join", h.HandleJoin)
	r.Post("/{id}/leave", h.HandleLeave)
	r.Post("/{id}/kick", h.HandleKick)

	r.Post("/{id}/invites", h.HandleInvite)
	r.Get("/{id}/invites", h.ServeInvites)

	return r
}
