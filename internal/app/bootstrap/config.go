// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/trusteehub/cams/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CAMS_MONGO_URI, CAMS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "cams", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "cams_session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "8h", Desc: "Session lifetime (e.g., 8h, 30m)"},

	{Name: "okta_issuer", Default: "", Desc: "Okta authorization server base URL (e.g., https://org.okta.com/oauth2/default)"},
	{Name: "okta_client_id", Default: "", Desc: "Okta OIDC client ID"},
	{Name: "okta_client_secret", Default: "", Desc: "Okta OIDC client secret"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Externally visible base URL for OIDC redirects"},

	{Name: "admin_key_hash", Default: "", Desc: "bcrypt hash of the admin key; empty disables admin endpoints"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_workflow", Default: "all", Desc: "Workflow event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "timeout_ping", Default: "2s", Desc: "Database ping timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "15s", Desc: "Timeout for multi-document operations"},
	{Name: "timeout_long", Default: "60s", Desc: "Timeout for index builds and admin operations"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// CAMS_* environment variables, and command-line flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 8*time.Hour),

		OktaIssuer:       appValues.String("okta_issuer"),
		OktaClientID:     appValues.String("okta_client_id"),
		OktaClientSecret: appValues.String("okta_client_secret"),

		BaseURL: appValues.String("base_url"),

		AdminKeyHash: appValues.String("admin_key_hash"),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogWorkflow: appValues.String("audit_log_workflow"),

		TimeoutPing:   appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 15*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 60*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before anything
// connects. The MongoDB URI format is checked here to fail early, and the
// audit modes must be recognized so a typo cannot silently disable
// auditing.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	for _, mode := range []string{appCfg.AuditLogAuth, appCfg.AuditLogWorkflow} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("unrecognized audit log mode %q", mode)
		}
	}

	if coreCfg.Env == "prod" {
		if appCfg.OktaIssuer == "" || appCfg.OktaClientID == "" || appCfg.OktaClientSecret == "" {
			return fmt.Errorf("okta_issuer, okta_client_id, and okta_client_secret are required in production")
		}
	}

	return nil
}
