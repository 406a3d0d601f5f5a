// internal/app/features/authokta/routes.go
package authokta

import "github.com/go-chi/chi/v5"

// Routes returns the router for Okta OIDC endpoints. Login and callback
// are public; logout works for any request carrying a session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	r.Post("/logout", h.ServeLogout)

	return r
}
