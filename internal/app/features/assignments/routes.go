// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/go-chi/chi/v5"
	"github.com/trusteehub/cams/internal/app/system/auth"
)

// Routes returns the router for the case-assignment API.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Get("/case/{caseID}", h.ServeListByCase)
	r.Get("/user/{userID}/caseload", h.ServeCaseLoad)

	return r
}
