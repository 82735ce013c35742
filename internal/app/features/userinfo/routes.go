// internal/app/features/userinfo/routes.go
package userinfo

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /me on the supplied router. No auth
// middleware: the handler reports session state either way.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/me", h.ServeUserInfo)
}
