// internal/app/features/orders/routes.go
package orders

import (
	"github.com/go-chi/chi/v5"
	"github.com/trusteehub/cams/internal/app/system/auth"
)

// Routes returns the router for consolidation order endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/{orderID}/approve", h.ServeApprove)
	r.Post("/{orderID}/reject", h.ServeReject)

	return r
}
