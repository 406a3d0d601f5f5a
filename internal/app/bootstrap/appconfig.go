// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, log
// level, request limits). AppConfig is everything specific to the
// case-management service: database connection, session cookies, the
// identity provider, audit logging, and admin access.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // secret for signing session cookies
	SessionName   string        // cookie name
	SessionDomain string        // cookie domain (blank means current host)
	SessionMaxAge time.Duration // cookie and cached-session lifetime

	// Okta OIDC configuration
	OktaIssuer       string // authorization server base URL
	OktaClientID     string
	OktaClientSecret string

	// BaseURL is the externally visible URL of this service, used to
	// build the OIDC redirect URL.
	BaseURL string

	// AdminKeyHash is the bcrypt hash of the key required for admin
	// endpoints. Empty disables them.
	AdminKeyHash string

	// Audit logging modes per category: "all", "db", "log", or "off".
	AuditLogAuth     string
	AuditLogWorkflow string

	// Database operation timeouts.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
