// Package gates guards operational endpoints that are not tied to a user
// session, such as dataflow and reindex triggers invoked by automation. The
// caller presents a shared admin key in the X-Admin-Key header; only a
// bcrypt hash of the key is ever held in configuration.
package gates

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "X-Admin-Key"

// AdminKeyGate verifies the shared admin key on operational requests.
type AdminKeyGate struct {
	hash []byte
	log  *zap.Logger
}

// NewAdminKeyGate builds a gate from the bcrypt hash of the admin key.
// An empty hash disables the gated endpoints entirely.
func NewAdminKeyGate(bcryptHash string, logger *zap.Logger) *AdminKeyGate {
	return &AdminKeyGate{hash: []byte(bcryptHash), log: logger}
}

// Require rejects requests that do not carry the correct admin key.
// Returns 503 when no admin key is configured, 401 on a missing or wrong
// key.
func (g *AdminKeyGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(g.hash) == 0 {
			http.Error(w, "admin endpoints disabled", http.StatusServiceUnavailable)
			return
		}
		key := r.Header.Get(adminKeyHeader)
		if key == "" {
			http.Error(w, "admin key required", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(key)); err != nil {
			g.log.Warn("admin key rejected", zap.String("remote", r.RemoteAddr))
			http.Error(w, "admin key rejected", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
